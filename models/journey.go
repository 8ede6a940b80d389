package models

import (
	"time"
)

// Journey phases
const (
	JourneyPlanning = "planning"
	JourneyActive   = "active"
	JourneyComplete = "complete"
)

// MaxWaypoints bounds a planned route.
const MaxWaypoints = 10

// DefaultWaypointRadius is the proximity threshold in meters.
const DefaultWaypointRadius = 50.0

// Waypoint is a user-placed route checkpoint. Reached is monotonic: the
// geofence engine only ever flips it to true.
type Waypoint struct {
	ID        string  `json:"id" bson:"_id"`
	Latitude  float64 `json:"lat" bson:"lat" validate:"required,latitude"`
	Longitude float64 `json:"lng" bson:"lng" validate:"required,longitude"`
	Label     string  `json:"label" bson:"label"`
	Radius    float64 `json:"radius" bson:"radius"`
	Reached   bool    `json:"reached" bson:"reached"`
}

// JourneyState is the single live journey aggregate.
type JourneyState struct {
	Phase          string     `json:"phase" bson:"phase"`
	StartedAt      *time.Time `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	DistanceMeters float64    `json:"distanceMeters" bson:"distanceMeters"`
	Coords         []Position `json:"coords" bson:"coords"`
	PausedDuration int64      `json:"pausedDurationMs" bson:"pausedDurationMs"`
	Waypoints      []Waypoint `json:"waypoints" bson:"waypoints"`
	IsDeviated     bool       `json:"isDeviated" bson:"isDeviated"`
}

// AddWaypointRequest creates a waypoint during planning.
type AddWaypointRequest struct {
	Latitude  float64 `json:"lat" validate:"required,latitude"`
	Longitude float64 `json:"lng" validate:"required,longitude"`
	Label     string  `json:"label"`
	Radius    float64 `json:"radius" validate:"omitempty,gt=0"`
}

// StartCheckInRequest starts the check-in countdown.
type StartCheckInRequest struct {
	IntervalMinutes int `json:"intervalMinutes" validate:"required,min=1,max=180"`
}

// ShareLocationRequest is a one-shot location share through a chosen channel.
type ShareLocationRequest struct {
	Channel string `json:"channel" validate:"omitempty,oneof=share sms email clipboard"`
}
