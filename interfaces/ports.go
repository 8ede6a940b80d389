package interfaces

import (
	"context"
	"safeher/models"
)

// The capability ports below stand in for the device-side collaborators the
// core does not own: geolocation, the alarm hardware, the media capture
// pipeline, and the share/clipboard surfaces. The websocket hub provides
// the production implementation of DeviceCommander; the services implement
// the rest against each other.

// LocationProvider is the normalized geolocation stream plus best-effort
// one-shot fixes with a bounded budget. GetOnce returns nil rather than an
// error when no fix arrives in time: the alarm path must never block on
// coordinates.
type LocationProvider interface {
	GetOnce(ctx context.Context, profile models.AccuracyProfile) *models.Position
	Watch(fn func(models.Position)) int
	ClearWatch(handle int)
	LastFix() *models.Position
}

// DeviceCommander pushes commands to the connected device UI. All commands
// are best-effort: a disconnected device returns an error so callers can
// fall through to their next layer, but never panics or blocks.
type DeviceCommander interface {
	StartSiren()
	StopSiren()
	Vibrate(pattern []int, repeatMS int)
	StopVibration()
	ShowAlarmOverlay(message string)
	HideAlarmOverlay()
	ShowCountdown(seconds int, source string)
	HideCountdown()
	StartCapture(payload models.WSCapturePayload) error
	StopCapture()
	ShareMessage(ctx context.Context, title, text string) error
	ComposeSMS(phones []string, body string) error
	CopyToClipboard(ctx context.Context, text string) error
	ShowFakeCall(name, phone string)
	RestartRecognizer()
	Toast(message, level string)
	Connected() bool
}

// EventLogger appends to the safety event log. Implementations enrich the
// event with location, address and a system snapshot; failures are logged
// and swallowed, never propagated into the emergency path.
type EventLogger interface {
	LogEvent(ctx context.Context, eventType string, extra models.EventExtra) *models.SafetyEvent
}

// CandidateRaiser receives trigger candidates from the watchers, the
// geofence engine and the check-in timer.
type CandidateRaiser interface {
	RaiseCandidate(ctx context.Context, source string, trigger models.EventTrigger)
	IsActive() bool
}

// AlertDispatcher fans an emergency out to the registered contacts.
type AlertDispatcher interface {
	Notify(ctx context.Context, source string, location *models.Position) models.DispatchResult
	CancelLiveUpdates()
}

// EvidenceRecorder owns the single exclusive capture session.
type EvidenceRecorder interface {
	Acquire(ctx context.Context, reason string, preferVideo, preferRearCamera bool) (*models.RecordingHandle, error)
	Stop(ctx context.Context)
	IsRecording() bool
}

// ContactSource is the read side of the contacts store.
type ContactSource interface {
	ListContacts(ctx context.Context) ([]models.Contact, error)
}

// ContactSender is one provider-backed delivery channel (SMS, email,
// push). A sender reports per-contact capability and outcome; the
// dispatcher owns ordering, fan-out and counting.
type ContactSender interface {
	Name() string
	LiveCapable() bool
	CanSend(contact models.Contact) bool
	Send(ctx context.Context, contact models.Contact, subject, body string) error
}

// LiveBroadcaster runs the periodic live-location re-send loop after a
// successful alert. Start replaces any running loop; Stop is idempotent.
type LiveBroadcaster interface {
	Start(run func(ctx context.Context))
	Stop()
	Active() bool
}

// Geocoder turns coordinates into a human-readable address, best effort.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// DeviceStatusSource exposes the last device-reported system snapshot for
// event enrichment.
type DeviceStatusSource interface {
	DeviceStatus() models.DeviceStatus
}

// EventBroadcaster streams appended events and session changes to the
// device UI.
type EventBroadcaster interface {
	BroadcastEvent(event *models.SafetyEvent)
	BroadcastSession(status models.SessionStatus)
}
