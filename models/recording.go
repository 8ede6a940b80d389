package models

import (
	"time"
)

// Media kinds
const (
	MediaAudio = "audio"
	MediaVideo = "video"
)

// Recording reasons mirror trigger sources plus manual capture.
const (
	ReasonSOS    = "sos"
	ReasonMotion = "motion"
	ReasonVoice  = "voice"
	ReasonManual = "manual"
)

// Recording is a completed evidence artifact.
type Recording struct {
	ID              string     `json:"id" bson:"_id"`
	Timestamp       time.Time  `json:"timestamp" bson:"timestamp"`
	Reason          string     `json:"reason" bson:"reason"`
	MediaKind       string     `json:"mediaKind" bson:"mediaKind"`
	DurationSec     int        `json:"durationSec" bson:"durationSec"`
	StartLocation   *Position  `json:"startLocation,omitempty" bson:"startLocation,omitempty"`
	Filename        string     `json:"filename" bson:"filename"`
	MimeType        string     `json:"mimeType" bson:"mimeType"`
	SizeBytes       int64      `json:"sizeBytes" bson:"sizeBytes"`
	Payload         []byte     `json:"-" bson:"payload"`
}

// RecordingHandle identifies the single open capture session.
type RecordingHandle struct {
	ID        string    `json:"id"`
	Reason    string    `json:"reason"`
	MediaKind string    `json:"mediaKind"`
	StartedAt time.Time `json:"startedAt"`
}

// StartRecordingRequest starts a manual capture.
type StartRecordingRequest struct {
	Video bool `json:"video"`
}

// RecordingChunkRequest uploads one captured chunk, base64-encoded.
type RecordingChunkRequest struct {
	Data     string `json:"data" validate:"required"`
	MimeType string `json:"mimeType"`
}
