package models

import (
	"time"
)

// Event types
const (
	EventSOSTriggered     = "sos_triggered"
	EventSOSCancelled     = "sos_cancelled"
	EventVoiceAlert       = "voice_alert"
	EventVoiceCancelled   = "voice_cancelled"
	EventMotionAlert      = "motion_alert"
	EventPathDeviation    = "path_deviation"
	EventBackOnTrack      = "back_on_track"
	EventCheckInOK        = "check_in_ok"
	EventCheckInMissed    = "check_in_missed"
	EventJourneyStarted   = "journey_started"
	EventJourneyCompleted = "journey_completed"
	EventWaypointReached  = "waypoint_reached"
	EventRouteCompleted   = "all_waypoints_reached"
	EventFakeCallUsed     = "fake_call_used"
	EventContactAlerted   = "contact_alerted"
	EventRecordingSaved   = "recording_saved"
	EventSirenActivated   = "siren_activated"
	EventLocationShared   = "location_shared"
	EventSafeModeOn       = "safe_mode_on"
	EventSafeModeOff      = "safe_mode_off"
	EventAppOpened        = "app_opened"
	EventEmergencyActive  = "emergency_active"
)

// Event severities
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
	SeveritySafe     = "safe"
)

// EventMeta maps an event type to its auto-generated title and severity.
type EventMeta struct {
	Title    string
	Severity string
}

var eventMeta = map[string]EventMeta{
	EventSOSTriggered:     {"SOS Triggered", SeverityCritical},
	EventSOSCancelled:     {"SOS Cancelled", SeveritySafe},
	EventVoiceAlert:       {"Voice Alert Detected", SeverityCritical},
	EventVoiceCancelled:   {"Voice Alert Cancelled", SeveritySafe},
	EventMotionAlert:      {"Motion Alert Detected", SeverityWarning},
	EventPathDeviation:    {"Path Deviation Detected", SeverityWarning},
	EventBackOnTrack:      {"Back On Track", SeveritySafe},
	EventCheckInOK:        {"Check-in Confirmed", SeveritySafe},
	EventCheckInMissed:    {"Check-in Missed", SeverityWarning},
	EventJourneyStarted:   {"Journey Started", SeverityInfo},
	EventJourneyCompleted: {"Journey Completed", SeveritySafe},
	EventWaypointReached:  {"Waypoint Reached", SeverityInfo},
	EventRouteCompleted:   {"All Waypoints Reached", SeveritySafe},
	EventFakeCallUsed:     {"Fake Call Activated", SeverityInfo},
	EventContactAlerted:   {"Contacts Alerted", SeverityWarning},
	EventRecordingSaved:   {"Recording Saved", SeverityInfo},
	EventSirenActivated:   {"Siren Activated", SeverityWarning},
	EventLocationShared:   {"Location Shared", SeverityInfo},
	EventSafeModeOn:       {"Safe Mode Enabled", SeveritySafe},
	EventSafeModeOff:      {"Safe Mode Disabled", SeverityInfo},
	EventAppOpened:        {"App Opened", SeverityInfo},
	EventEmergencyActive:  {"Emergency Activated", SeverityCritical},
}

// MetaForEvent returns the title/severity pair for an event type. Unknown
// types fall back to the raw type name with info severity.
func MetaForEvent(eventType string) EventMeta {
	if meta, ok := eventMeta[eventType]; ok {
		return meta
	}
	return EventMeta{Title: eventType, Severity: SeverityInfo}
}

// EventLocation is the optional location attached to a SafetyEvent.
type EventLocation struct {
	Latitude  float64 `json:"lat" bson:"lat"`
	Longitude float64 `json:"lng" bson:"lng"`
	Accuracy  float64 `json:"accuracy,omitempty" bson:"accuracy,omitempty"`
	Address   string  `json:"address,omitempty" bson:"address,omitempty"`
	MapsLink  string  `json:"mapsLink,omitempty" bson:"mapsLink,omitempty"`
}

// EventTrigger describes what raised the event.
type EventTrigger struct {
	Method          string  `json:"method,omitempty" bson:"method,omitempty"`
	Keyword         string  `json:"keyword,omitempty" bson:"keyword,omitempty"`
	MotionMagnitude float64 `json:"motionMagnitude,omitempty" bson:"motionMagnitude,omitempty"`
	DistanceMeters  float64 `json:"distanceMeters,omitempty" bson:"distanceMeters,omitempty"`
}

// EventMedia flags which evidence kinds were captured with the event.
type EventMedia struct {
	HasVideo    bool `json:"hasVideo" bson:"hasVideo"`
	HasPhoto    bool `json:"hasPhoto" bson:"hasPhoto"`
	HasAudio    bool `json:"hasAudio" bson:"hasAudio"`
	DurationSec int  `json:"durationSec,omitempty" bson:"durationSec,omitempty"`
}

// EventContacts records the alerting outcome attached to the event.
type EventContacts struct {
	Alerted      bool `json:"alerted" bson:"alerted"`
	AlertedCount int  `json:"alertedCount" bson:"alertedCount"`
}

// EventJourney carries journey context for journey-scoped events.
type EventJourney struct {
	DistanceMeters float64 `json:"distanceMeters,omitempty" bson:"distanceMeters,omitempty"`
	DurationSec    int     `json:"durationSec,omitempty" bson:"durationSec,omitempty"`
	Points         int     `json:"points,omitempty" bson:"points,omitempty"`
}

// EventResolution is the only field of a SafetyEvent that may be mutated
// after the event is written.
type EventResolution struct {
	Resolved   bool      `json:"resolved" bson:"resolved"`
	Note       string    `json:"note,omitempty" bson:"note,omitempty"`
	ResolvedAt time.Time `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
}

// EventSystem is a device snapshot taken at log time.
type EventSystem struct {
	BatteryLevel *int   `json:"batteryLevel,omitempty" bson:"batteryLevel,omitempty"`
	NetworkType  string `json:"networkType,omitempty" bson:"networkType,omitempty"`
	AppVersion   string `json:"appVersion,omitempty" bson:"appVersion,omitempty"`
}

// SafetyEvent is the append-only record of everything that happened.
// Immutable once written except for Resolution.
type SafetyEvent struct {
	ID         string          `json:"id" bson:"_id"`
	Type       string          `json:"type" bson:"type"`
	Timestamp  time.Time       `json:"timestamp" bson:"timestamp"`
	Title      string          `json:"title" bson:"title"`
	Severity   string          `json:"severity" bson:"severity"`
	Location   *EventLocation  `json:"location,omitempty" bson:"location,omitempty"`
	Trigger    EventTrigger    `json:"trigger" bson:"trigger"`
	Media      EventMedia      `json:"media" bson:"media"`
	Contacts   EventContacts   `json:"contacts" bson:"contacts"`
	Journey    EventJourney    `json:"journey" bson:"journey"`
	Resolution EventResolution `json:"resolution" bson:"resolution"`
	System     EventSystem     `json:"system" bson:"system"`
}

// EventExtra carries optional fields a caller wants merged into the event
// it is logging. Anything left nil/zero is filled by the logger.
type EventExtra struct {
	Location *EventLocation
	Trigger  EventTrigger
	Media    EventMedia
	Contacts EventContacts
	Journey  EventJourney
}

// EventQuery filters history listings.
type EventQuery struct {
	Type     string    `form:"type"`
	Severity string    `form:"severity"`
	From     time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To       time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit    int       `form:"limit"`
}

// EventStats summarizes the event log for the history screen.
type EventStats struct {
	Total      int64            `json:"total"`
	BySeverity map[string]int64 `json:"bySeverity"`
	ByType     map[string]int64 `json:"byType"`
	LastEvent  *time.Time       `json:"lastEvent,omitempty"`
}

// ResolveEventRequest marks an event resolved.
type ResolveEventRequest struct {
	Note string `json:"note"`
}
