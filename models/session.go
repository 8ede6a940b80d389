package models

import (
	"time"
)

// SessionState is the emergency session lifecycle state.
type SessionState string

const (
	SessionIdle      SessionState = "idle"
	SessionCountdown SessionState = "countdown"
	SessionActive    SessionState = "active"
	SessionCooldown  SessionState = "cooldown"
)

// Trigger sources
const (
	SourceManual    = "sos"
	SourceMotion    = "motion"
	SourceVoice     = "voice"
	SourceDeviation = "deviation"
	SourceCheckIn   = "checkin"
)

// EmergencySession is the live-session aggregate owned by the session
// controller. ThreatScore is diagnostic only: monotonic non-decreasing
// while active, reset to zero on deactivation, never read as a control
// input.
type EmergencySession struct {
	State            SessionState `json:"state"`
	Source           string       `json:"source,omitempty"`
	StartedAt        time.Time    `json:"startedAt,omitempty"`
	ThreatScore      int          `json:"threatScore"`
	RecordingHandle  string       `json:"recordingHandle,omitempty"`
	LiveUpdateActive bool         `json:"liveUpdateActive"`
}

// SessionStatus is the bridge-visible session snapshot.
type SessionStatus struct {
	State         SessionState `json:"state"`
	Source        string       `json:"source,omitempty"`
	StartedAt     *time.Time   `json:"startedAt,omitempty"`
	ThreatScore   int          `json:"threatScore"`
	CountdownLeft int          `json:"countdownLeft,omitempty"`
	Recording     bool         `json:"recording"`
}

// Position is a normalized geolocation sample.
type Position struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Speed     float64   `json:"speed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AccuracyProfile selects how long a one-shot fix may take and how stale a
// cached fix may be before it is discarded.
type AccuracyProfile struct {
	Budget time.Duration
	MaxAge time.Duration
}

// DispatchResult reports a contact-notification batch. Attempted always
// equals Succeeded+Failed; a batch never raises per-contact errors to the
// caller.
type DispatchResult struct {
	Attempted int  `json:"attempted"`
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
	NoContacts bool `json:"noContacts,omitempty"`
	LiveUpdates bool `json:"liveUpdates,omitempty"`
}

// MotionSample is one accelerometer reading pushed from the device.
type MotionSample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// TranscriptBatch is a recognized-speech batch pushed from the device.
type TranscriptBatch struct {
	Transcript string `json:"transcript" validate:"required"`
}

// RecognizerErrorReport distinguishes permission denials from transient
// recognizer failures.
type RecognizerErrorReport struct {
	Code string `json:"code" validate:"required"` // not-allowed, no-speech, aborted, network
}

// TriggerSOSRequest is the manual SOS trigger.
type TriggerSOSRequest struct {
	Message string `json:"message"`
}

// CancelRequest carries the reason for a cancellation.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// SafeModeRequest toggles safe mode.
type SafeModeRequest struct {
	Enabled bool `json:"enabled"`
}

// DeviceStatus is the last device-reported system snapshot.
type DeviceStatus struct {
	BatteryLevel *int   `json:"batteryLevel,omitempty"`
	NetworkType  string `json:"networkType,omitempty"`
	AppVersion   string `json:"appVersion,omitempty"`
	ReportedAt   time.Time `json:"reportedAt,omitempty"`
}
