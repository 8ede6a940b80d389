package services

import (
	"context"
	"testing"
	"time"

	"safeher/config"
	"safeher/models"
)

func newGeofenceFixture() (*GeofenceService, *fakeRaiser, *fakeLogger) {
	cfg := &config.Config{
		DeviationThreshold: 150,
		DeviationConfirm:   30 * time.Second,
		DeviationRepeat:    2 * time.Minute,
	}
	raiser := &fakeRaiser{}
	logger := &fakeLogger{}
	return NewGeofenceService(cfg, logger, raiser), raiser, logger
}

func testRoute() *models.JourneyState {
	return &models.JourneyState{
		Phase: models.JourneyActive,
		Waypoints: []models.Waypoint{
			{ID: "wp_1", Latitude: 0, Longitude: 0, Label: "Home", Radius: 50},
			{ID: "wp_2", Latitude: 0, Longitude: 0.001, Label: "Office", Radius: 50},
		},
	}
}

func at(lat, lng float64) models.Position {
	return models.Position{Latitude: lat, Longitude: lng, Timestamp: time.Now()}
}

func TestWaypointReachedOnce(t *testing.T) {
	svc, _, logger := newGeofenceFixture()
	ctx := context.Background()
	state := testRoute()

	reached := svc.Evaluate(ctx, state, at(0.0001, 0))
	if len(reached) != 1 || reached[0].ID != "wp_1" {
		t.Fatalf("reached = %+v, want wp_1 only", reached)
	}
	if !state.Waypoints[0].Reached {
		t.Error("waypoint flag not set on state")
	}

	// Second pass inside the same radius is not a new arrival.
	reached = svc.Evaluate(ctx, state, at(0.0002, 0))
	if len(reached) != 0 {
		t.Fatalf("re-entry reported as new arrival: %+v", reached)
	}
	if logger.count(models.EventWaypointReached) != 1 {
		t.Errorf("waypoint_reached events = %d, want 1", logger.count(models.EventWaypointReached))
	}
}

func TestAllWaypointsReachedLoggedOnLastArrival(t *testing.T) {
	svc, _, logger := newGeofenceFixture()
	ctx := context.Background()
	state := testRoute()

	svc.Evaluate(ctx, state, at(0.0001, 0))
	if logger.count(models.EventRouteCompleted) != 0 {
		t.Fatal("route completion logged before last waypoint")
	}

	svc.Evaluate(ctx, state, at(0.0001, 0.001))
	if logger.count(models.EventRouteCompleted) != 1 {
		t.Fatalf("all_waypoints_reached events = %d, want 1", logger.count(models.EventRouteCompleted))
	}

	// Lingering near the final waypoint never re-logs completion.
	svc.Evaluate(ctx, state, at(0.0002, 0.001))
	if logger.count(models.EventRouteCompleted) != 1 {
		t.Errorf("route completion re-logged")
	}
}

func TestDeviationConfirmWindow(t *testing.T) {
	svc, raiser, logger := newGeofenceFixture()
	ctx := context.Background()
	state := testRoute()

	base := time.Now()
	svc.now = func() time.Time { return base }

	// Roughly 550m off a west-east route: well past the threshold.
	offRoute := at(0.005, 0.0005)

	svc.Evaluate(ctx, state, offRoute)
	if raiser.raiseCount() != 0 {
		t.Fatal("raised before confirm window elapsed")
	}
	if state.IsDeviated {
		t.Error("state marked deviated before confirmation")
	}

	svc.now = func() time.Time { return base.Add(31 * time.Second) }
	svc.Evaluate(ctx, state, offRoute)
	if raiser.raiseCount() != 1 {
		t.Fatalf("raise count = %d, want 1 after confirm window", raiser.raiseCount())
	}
	if raiser.raised[0].source != models.SourceDeviation {
		t.Errorf("source = %s, want %s", raiser.raised[0].source, models.SourceDeviation)
	}
	if !state.IsDeviated {
		t.Error("state not marked deviated")
	}
	if logger.count(models.EventPathDeviation) != 1 {
		t.Errorf("path_deviation events = %d, want 1", logger.count(models.EventPathDeviation))
	}

	// Still off route shortly after: repeat interval gates a second raise.
	svc.now = func() time.Time { return base.Add(40 * time.Second) }
	svc.Evaluate(ctx, state, offRoute)
	if raiser.raiseCount() != 1 {
		t.Fatalf("repeat raised inside repeat interval")
	}

	svc.now = func() time.Time { return base.Add(3 * time.Minute) }
	svc.Evaluate(ctx, state, offRoute)
	if raiser.raiseCount() != 2 {
		t.Fatalf("raise count = %d, want 2 after repeat interval", raiser.raiseCount())
	}
}

func TestBackOnTrackLoggedOncePerExcursion(t *testing.T) {
	svc, raiser, logger := newGeofenceFixture()
	ctx := context.Background()
	state := testRoute()
	state.Waypoints[0].Reached = true
	state.Waypoints[1].Reached = true

	base := time.Now()
	svc.now = func() time.Time { return base }
	offRoute := at(0.005, 0.0005)
	onRoute := at(0, 0.0005)

	svc.Evaluate(ctx, state, offRoute)
	svc.now = func() time.Time { return base.Add(time.Minute) }
	svc.Evaluate(ctx, state, offRoute)
	if raiser.raiseCount() != 1 {
		t.Fatalf("raise count = %d, want 1", raiser.raiseCount())
	}

	svc.Evaluate(ctx, state, onRoute)
	if state.IsDeviated {
		t.Error("state still deviated after returning")
	}
	if logger.count(models.EventBackOnTrack) != 1 {
		t.Fatalf("back_on_track events = %d, want 1", logger.count(models.EventBackOnTrack))
	}

	// Staying on route never re-logs the recovery.
	svc.Evaluate(ctx, state, onRoute)
	if logger.count(models.EventBackOnTrack) != 1 {
		t.Errorf("back_on_track re-logged while on route")
	}
}

func TestShortExcursionNeverRaises(t *testing.T) {
	svc, raiser, _ := newGeofenceFixture()
	ctx := context.Background()
	state := testRoute()
	state.Waypoints[0].Reached = true
	state.Waypoints[1].Reached = true

	base := time.Now()
	svc.now = func() time.Time { return base }

	svc.Evaluate(ctx, state, at(0.005, 0.0005))
	svc.now = func() time.Time { return base.Add(10 * time.Second) }
	svc.Evaluate(ctx, state, at(0, 0.0005))

	// A later excursion starts its own confirm window.
	svc.now = func() time.Time { return base.Add(20 * time.Second) }
	svc.Evaluate(ctx, state, at(0.005, 0.0005))
	svc.now = func() time.Time { return base.Add(35 * time.Second) }
	svc.Evaluate(ctx, state, at(0.005, 0.0005))

	if raiser.raiseCount() != 0 {
		t.Fatalf("raise count = %d, want 0", raiser.raiseCount())
	}
}
