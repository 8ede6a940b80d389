package models

import (
	"time"
)

// Device command types sent over the websocket bridge.
const (
	WSCommandSirenStart        = "siren_start"
	WSCommandSirenStop         = "siren_stop"
	WSCommandVibrate           = "vibrate"
	WSCommandVibrateStop       = "vibrate_stop"
	WSCommandOverlayShow       = "overlay_show"
	WSCommandOverlayHide       = "overlay_hide"
	WSCommandCountdownShow     = "countdown_show"
	WSCommandCountdownHide     = "countdown_hide"
	WSCommandCaptureStart      = "capture_start"
	WSCommandCaptureStop       = "capture_stop"
	WSCommandShare             = "share"
	WSCommandComposeSMS        = "compose_sms"
	WSCommandClipboardCopy     = "clipboard_copy"
	WSCommandToast             = "toast"
	WSCommandFakeCall          = "fake_call"
	WSCommandRecognizerRestart = "recognizer_restart"
	WSEventAppended            = "event"
	WSSessionChanged           = "session"
)

// Inbound device message types.
const (
	WSDeviceStatus = "device_status"
	WSDeviceAck    = "ack"
)

// WSMessage is the single envelope used in both directions on the bridge.
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	AckID     string      `json:"ackId,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// WSInbound is the parsed form of a device -> core message.
type WSInbound struct {
	Type  string                 `json:"type"`
	Data  map[string]interface{} `json:"data"`
	AckID string                 `json:"ackId"`
}

// WSAck reports the device-side outcome of an acknowledged command.
type WSAck struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// WSVibratePayload is the vibration command body. RepeatMS > 0 keeps the
// pattern looping until vibrate_stop.
type WSVibratePayload struct {
	Pattern  []int `json:"pattern"`
	RepeatMS int   `json:"repeatMs,omitempty"`
}

// WSCapturePayload instructs the device to open the media capture.
type WSCapturePayload struct {
	SessionID  string `json:"sessionId"`
	Reason     string `json:"reason"`
	Video      bool   `json:"video"`
	RearCamera bool   `json:"rearCamera"`
}

// WSSharePayload asks the device to open its native share sheet.
type WSSharePayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// WSComposeSMSPayload asks the device to open a pre-filled SMS composer.
type WSComposeSMSPayload struct {
	Phones []string `json:"phones"`
	Body   string   `json:"body"`
}

// WSToastPayload surfaces a transient message on the device.
type WSToastPayload struct {
	Message string `json:"message"`
	Level   string `json:"level"` // success, warning, error, info
}

// WSCountdownPayload drives the visible cancellable countdown.
type WSCountdownPayload struct {
	Seconds int    `json:"seconds"`
	Source  string `json:"source"`
}

// WSFakeCallPayload shows the fake incoming-call screen.
type WSFakeCallPayload struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
