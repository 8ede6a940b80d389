package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"safeher/models"
	"safeher/utils"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 65536

	// Buffer size for client send channel
	sendBufferSize = 256
)

// Upgrader is shared with the websocket controller. The bridge binds to
// loopback only, so any origin the browser presents is ours.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Client struct {
	conn *websocket.Conn
	hub  *Hub

	connectionID string
	connectedAt  time.Time

	send chan models.WSMessage

	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		conn:         conn,
		hub:          hub,
		connectionID: utils.GenerateUUID(),
		connectedAt:  time.Now(),
		send:         make(chan models.WSMessage, sendBufferSize),
		done:         make(chan struct{}),
	}
}

// Send queues an outbound message. Returns false if the client is closed
// or its buffer is full.
func (c *Client) Send(message models.WSMessage) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- message:
		return true
	default:
		logrus.Warn("Device send channel full, dropping message")
		return false
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageData, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Error("WebSocket read error")
			}
			return
		}
		c.handleMessage(messageData)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				logrus.WithError(err).Error("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(messageData []byte) {
	var inbound models.WSInbound
	if err := json.Unmarshal(messageData, &inbound); err != nil {
		logrus.WithError(err).Warn("Invalid websocket message")
		return
	}

	switch inbound.Type {
	case models.WSDeviceStatus:
		var status models.DeviceStatus
		if err := remarshal(inbound.Data, &status); err != nil {
			logrus.WithError(err).Warn("Invalid device status")
			return
		}
		c.hub.setDeviceStatus(status)

	case models.WSDeviceAck:
		var ack models.WSAck
		if err := remarshal(inbound.Data, &ack); err != nil {
			logrus.WithError(err).Warn("Invalid ack")
			return
		}
		if ack.ID == "" {
			ack.ID = inbound.AckID
		}
		c.hub.resolveAck(ack)

	default:
		logrus.WithField("type", inbound.Type).Warn("Unknown websocket message type")
	}
}

func remarshal(data map[string]interface{}, target interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}
