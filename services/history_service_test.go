package services

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"safeher/models"
)

func TestLogEventEnrichesWithQuickFix(t *testing.T) {
	loc := &fakeLocation{fix: &models.Position{Latitude: 12.9716, Longitude: 77.5946, Accuracy: 9, Timestamp: time.Now()}}
	svc := NewHistoryService(nil, loc, nil, nil, nil)

	event := svc.LogEvent(context.Background(), models.EventMotionAlert, models.EventExtra{})

	if event.Location == nil {
		t.Fatal("event not enriched with a location")
	}
	if event.Location.Latitude != 12.9716 || event.Location.Longitude != 77.5946 {
		t.Errorf("location = %+v", event.Location)
	}
	if event.Location.MapsLink == "" {
		t.Error("maps link not set")
	}
	if len(loc.profiles) != 1 || loc.profiles[0] != ProfileQuick {
		t.Errorf("fix requested with %+v, want the quick profile", loc.profiles)
	}
}

func TestLogEventKeepsCallerLocation(t *testing.T) {
	loc := &fakeLocation{fix: &models.Position{Latitude: 1, Longitude: 1, Timestamp: time.Now()}}
	svc := NewHistoryService(nil, loc, nil, nil, nil)

	event := svc.LogEvent(context.Background(), models.EventWaypointReached, models.EventExtra{
		Location: &models.EventLocation{Latitude: 5, Longitude: 6},
	})

	if event.Location.Latitude != 5 || event.Location.Longitude != 6 {
		t.Errorf("caller location overwritten: %+v", event.Location)
	}
	if len(loc.profiles) != 0 {
		t.Errorf("fix requested although the caller supplied a location")
	}
}

func TestRenderEventsCSVHeaderOnly(t *testing.T) {
	data, err := renderEventsCSV(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := strings.TrimSpace(string(data))
	want := "Timestamp,Type,Title,Severity,Latitude,Longitude,Address"
	if got != want {
		t.Fatalf("header = %q, want %q", got, want)
	}
}

func TestRenderEventsCSVRows(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	events := []models.SafetyEvent{
		{
			ID:        "evt_1",
			Type:      models.EventSOSTriggered,
			Timestamp: ts,
			Title:     "SOS Triggered",
			Severity:  models.SeverityCritical,
			Location: &models.EventLocation{
				Latitude:  12.9716,
				Longitude: 77.5946,
				Address:   "MG Road, Bengaluru",
			},
		},
		{
			ID:        "evt_2",
			Type:      models.EventCheckInOK,
			Timestamp: ts.Add(time.Minute),
			Title:     "Checked In",
			Severity:  models.SeveritySafe,
		},
	}

	data, err := renderEventsCSV(events)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("parse rendered csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("row count = %d, want 3 (header + 2)", len(records))
	}

	first := records[1]
	if first[0] != "2026-03-14T09:26:53Z" {
		t.Errorf("timestamp = %q", first[0])
	}
	if first[1] != models.EventSOSTriggered || first[3] != models.SeverityCritical {
		t.Errorf("row = %v", first)
	}
	if first[4] != "12.971600" || first[5] != "77.594600" {
		t.Errorf("coordinates = %q,%q", first[4], first[5])
	}
	if first[6] != "MG Road, Bengaluru" {
		t.Errorf("address = %q", first[6])
	}

	// Events without a location render empty coordinate cells.
	second := records[2]
	if second[4] != "" || second[5] != "" || second[6] != "" {
		t.Errorf("locationless row = %v, want empty tail cells", second)
	}
}
