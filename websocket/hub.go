package websocket

import (
	"context"
	"sync"
	"time"

	"safeher/models"
	"safeher/utils"

	"github.com/sirupsen/logrus"
)

// defaultAckTimeout bounds how long an acknowledged command waits for the
// device before the caller falls through to its next delivery layer.
const defaultAckTimeout = 8 * time.Second

// Hub bridges the safety core to the single connected device UI. Outbound
// messages are device commands (siren, vibrate, capture, share); inbound
// messages are status snapshots and command acks. A second connection
// replaces the first: there is exactly one device.
type Hub struct {
	mu     sync.RWMutex
	client *Client

	register   chan *Client
	unregister chan *Client

	ackMu       sync.Mutex
	pendingAcks map[string]chan models.WSAck
	ackTimeout  time.Duration

	statusMu     sync.RWMutex
	deviceStatus models.DeviceStatus
}

func NewHub() *Hub {
	return &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		pendingAcks: make(map[string]chan models.WSAck),
		ackTimeout:  defaultAckTimeout,
	}
}

// SetAckTimeout overrides the ack wait, used by tests.
func (h *Hub) SetAckTimeout(d time.Duration) {
	h.ackTimeout = d
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.client != nil && h.client != client {
				logrus.Info("Replacing existing device connection")
				h.client.Close()
			}
			h.client = client
			h.mu.Unlock()
			logrus.WithField("connectionId", client.connectionID).Info("Device connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if h.client == client {
				h.client = nil
			}
			h.mu.Unlock()
			logrus.WithField("connectionId", client.connectionID).Info("Device disconnected")
		}
	}
}

// Register hands a freshly upgraded connection to the hub loop.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Connected() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.client != nil
}

// send pushes a fire-and-forget command. Returns false when no device is
// connected or its send buffer is full.
func (h *Hub) send(msgType string, data interface{}) bool {
	h.mu.RLock()
	client := h.client
	h.mu.RUnlock()

	if client == nil {
		return false
	}
	return client.Send(models.WSMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// sendWithAck pushes a command and blocks until the device acknowledges it,
// the ack timeout elapses, or ctx is cancelled.
func (h *Hub) sendWithAck(ctx context.Context, msgType string, data interface{}) error {
	h.mu.RLock()
	client := h.client
	h.mu.RUnlock()

	if client == nil {
		return utils.NewTransportError("no device connected", nil)
	}

	ackID := utils.GenerateUUID()
	ackCh := make(chan models.WSAck, 1)

	h.ackMu.Lock()
	h.pendingAcks[ackID] = ackCh
	h.ackMu.Unlock()

	defer func() {
		h.ackMu.Lock()
		delete(h.pendingAcks, ackID)
		h.ackMu.Unlock()
	}()

	ok := client.Send(models.WSMessage{
		Type:      msgType,
		Data:      data,
		AckID:     ackID,
		Timestamp: time.Now(),
	})
	if !ok {
		return utils.NewTransportError("device send buffer full", nil)
	}

	timer := time.NewTimer(h.ackTimeout)
	defer timer.Stop()

	select {
	case ack := <-ackCh:
		if !ack.Success {
			return utils.NewTransportError("device rejected command: "+ack.Error, nil)
		}
		return nil
	case <-timer.C:
		return utils.NewTimeoutError("device did not acknowledge command")
	case <-ctx.Done():
		return utils.NewTimeoutError("command cancelled")
	}
}

func (h *Hub) resolveAck(ack models.WSAck) {
	h.ackMu.Lock()
	ch, ok := h.pendingAcks[ack.ID]
	h.ackMu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- ack:
	default:
	}
}

func (h *Hub) setDeviceStatus(status models.DeviceStatus) {
	status.ReportedAt = time.Now()
	h.statusMu.Lock()
	h.deviceStatus = status
	h.statusMu.Unlock()
}

// DeviceStatus returns the last snapshot the device reported.
func (h *Hub) DeviceStatus() models.DeviceStatus {
	h.statusMu.RLock()
	defer h.statusMu.RUnlock()
	return h.deviceStatus
}

// DeviceCommander implementation

func (h *Hub) StartSiren() {
	h.send(models.WSCommandSirenStart, nil)
}

func (h *Hub) StopSiren() {
	h.send(models.WSCommandSirenStop, nil)
}

func (h *Hub) Vibrate(pattern []int, repeatMS int) {
	h.send(models.WSCommandVibrate, models.WSVibratePayload{
		Pattern:  pattern,
		RepeatMS: repeatMS,
	})
}

func (h *Hub) StopVibration() {
	h.send(models.WSCommandVibrateStop, nil)
}

func (h *Hub) ShowAlarmOverlay(message string) {
	h.send(models.WSCommandOverlayShow, map[string]string{"message": message})
}

func (h *Hub) HideAlarmOverlay() {
	h.send(models.WSCommandOverlayHide, nil)
}

func (h *Hub) ShowCountdown(seconds int, source string) {
	h.send(models.WSCommandCountdownShow, models.WSCountdownPayload{
		Seconds: seconds,
		Source:  source,
	})
}

func (h *Hub) HideCountdown() {
	h.send(models.WSCommandCountdownHide, nil)
}

func (h *Hub) StartCapture(payload models.WSCapturePayload) error {
	if !h.send(models.WSCommandCaptureStart, payload) {
		return utils.NewTransportError("no device connected", nil)
	}
	return nil
}

func (h *Hub) StopCapture() {
	h.send(models.WSCommandCaptureStop, nil)
}

func (h *Hub) ShareMessage(ctx context.Context, title, text string) error {
	return h.sendWithAck(ctx, models.WSCommandShare, models.WSSharePayload{
		Title: title,
		Text:  text,
	})
}

func (h *Hub) ComposeSMS(phones []string, body string) error {
	if !h.send(models.WSCommandComposeSMS, models.WSComposeSMSPayload{
		Phones: phones,
		Body:   body,
	}) {
		return utils.NewTransportError("no device connected", nil)
	}
	return nil
}

func (h *Hub) CopyToClipboard(ctx context.Context, text string) error {
	return h.sendWithAck(ctx, models.WSCommandClipboardCopy, map[string]string{"text": text})
}

func (h *Hub) ShowFakeCall(name, phone string) {
	h.send(models.WSCommandFakeCall, models.WSFakeCallPayload{
		Name:  name,
		Phone: phone,
	})
}

func (h *Hub) RestartRecognizer() {
	h.send(models.WSCommandRecognizerRestart, nil)
}

func (h *Hub) Toast(message, level string) {
	h.send(models.WSCommandToast, models.WSToastPayload{
		Message: message,
		Level:   level,
	})
}

// EventBroadcaster implementation

func (h *Hub) BroadcastEvent(event *models.SafetyEvent) {
	h.send(models.WSEventAppended, event)
}

func (h *Hub) BroadcastSession(status models.SessionStatus) {
	h.send(models.WSSessionChanged, status)
}
