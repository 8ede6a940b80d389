package services

import (
	"context"
	"testing"
	"time"

	"safeher/config"
	"safeher/models"
)

func newJourneyFixture() (*JourneyService, *fakeLocation, *fakeLogger) {
	cfg := &config.Config{
		DeviationThreshold: 150,
		DeviationConfirm:   30 * time.Second,
		DeviationRepeat:    2 * time.Minute,
	}
	loc := &fakeLocation{}
	logger := &fakeLogger{}
	geofence := NewGeofenceService(cfg, logger, &fakeRaiser{})
	return NewJourneyService(nil, geofence, loc, logger), loc, logger
}

func TestJourneyPauseStopsTrackingAndResumeAccumulates(t *testing.T) {
	svc, loc, _ := newJourneyFixture()
	ctx := context.Background()

	if _, err := svc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	loc.push(at(0, 0))
	if got := len(svc.Get().Coords); got != 1 {
		t.Fatalf("coords after first fix = %d, want 1", got)
	}

	if _, err := svc.Pause(ctx); err != nil {
		t.Fatal(err)
	}
	// The watch is torn down while paused, so fixes leave no trail.
	loc.push(at(0.001, 0))
	if got := len(svc.Get().Coords); got != 1 {
		t.Fatalf("coords grew while paused: %d", got)
	}

	time.Sleep(30 * time.Millisecond)
	state, err := svc.Resume(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if state.PausedDuration < 25 {
		t.Errorf("PausedDuration = %dms, want at least 25ms", state.PausedDuration)
	}

	loc.push(at(0.002, 0))
	if got := len(svc.Get().Coords); got != 2 {
		t.Fatalf("coords after resume = %d, want 2", got)
	}
}

func TestJourneyCompleteFoldsPendingPause(t *testing.T) {
	svc, _, _ := newJourneyFixture()
	ctx := context.Background()

	if _, err := svc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Pause(ctx); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)

	state, err := svc.Complete(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if state.Phase != models.JourneyComplete {
		t.Fatalf("phase = %q, want complete", state.Phase)
	}
	if state.PausedDuration < 25 {
		t.Errorf("PausedDuration = %dms, want pending pause folded in", state.PausedDuration)
	}
}

func TestJourneyPauseResumeStateGuards(t *testing.T) {
	svc, _, _ := newJourneyFixture()
	ctx := context.Background()

	if _, err := svc.Pause(ctx); err == nil {
		t.Error("pause without an active journey should fail")
	}
	if _, err := svc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Resume(ctx); err == nil {
		t.Error("resume without a pause should fail")
	}
	if _, err := svc.Pause(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Pause(ctx); err == nil {
		t.Error("double pause should fail")
	}
}

func TestJourneyStartClearsPausedDuration(t *testing.T) {
	svc, _, _ := newJourneyFixture()
	ctx := context.Background()

	if _, err := svc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Pause(ctx); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := svc.Resume(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Complete(ctx); err != nil {
		t.Fatal(err)
	}

	state, err := svc.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if state.PausedDuration != 0 {
		t.Errorf("PausedDuration after restart = %d, want 0", state.PausedDuration)
	}
}
