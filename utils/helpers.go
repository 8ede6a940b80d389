package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateUUID returns a plain UUID string.
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateEventID returns an event-log record id.
func GenerateEventID() string {
	return "evt_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}

// GenerateRecordingID returns an evidence artifact id.
func GenerateRecordingID() string {
	return "rec_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}

// ClampInt clamps value to [min, max].
func ClampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// FormatDistance renders a distance in meters as "123 m" or "1.2 km".
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// FormatDuration renders a duration as "mm:ss" for short spans and
// "hh:mm:ss" beyond an hour.
func FormatDuration(duration time.Duration) string {
	total := int(duration.Seconds())
	if total < 3600 {
		return fmt.Sprintf("%02d:%02d", total/60, total%60)
	}
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// MapsLink builds a Google Maps link for a coordinate pair.
func MapsLink(lat, lng float64) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%.6f,%.6f", lat, lng)
}

// NormalizePhoneNumber strips formatting characters, keeping digits and a
// leading plus.
func NormalizePhoneNumber(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time {
	return &t
}
