package services

import (
	"context"
	"testing"
	"time"

	"safeher/config"
	"safeher/models"
)

func newMotionFixture() (*MotionService, *fakeRaiser, *fakeLogger) {
	cfg := &config.Config{
		MotionThreshold: 20,
		MotionCooldown:  60 * time.Second,
	}
	raiser := &fakeRaiser{}
	logger := &fakeLogger{}
	return NewMotionService(cfg, logger, raiser), raiser, logger
}

func TestMotionBelowThresholdIgnored(t *testing.T) {
	svc, raiser, _ := newMotionFixture()

	if svc.IngestSample(context.Background(), models.MotionSample{X: 12, Y: 8, Z: 19.9}) {
		t.Fatal("sample under threshold raised a candidate")
	}
	if raiser.raiseCount() != 0 {
		t.Fatalf("raise count = %d, want 0", raiser.raiseCount())
	}
}

func TestMotionSingleAxisTriggers(t *testing.T) {
	svc, raiser, logger := newMotionFixture()

	if !svc.IngestSample(context.Background(), models.MotionSample{X: 1, Y: -25, Z: 2}) {
		t.Fatal("over-threshold negative axis did not raise")
	}
	if raiser.raiseCount() != 1 {
		t.Fatalf("raise count = %d, want 1", raiser.raiseCount())
	}
	if raiser.raised[0].source != models.SourceMotion {
		t.Errorf("source = %s, want %s", raiser.raised[0].source, models.SourceMotion)
	}
	if got := raiser.raised[0].trigger.MotionMagnitude; got != 25 {
		t.Errorf("magnitude = %v, want 25", got)
	}
	if logger.count(models.EventMotionAlert) != 1 {
		t.Errorf("motion_alert events = %d, want 1", logger.count(models.EventMotionAlert))
	}
}

func TestMotionCooldownGatesRepeats(t *testing.T) {
	svc, raiser, _ := newMotionFixture()
	ctx := context.Background()

	base := time.Now()
	svc.now = func() time.Time { return base }

	svc.IngestSample(ctx, models.MotionSample{X: 30})
	svc.IngestSample(ctx, models.MotionSample{X: 30})
	if raiser.raiseCount() != 1 {
		t.Fatalf("raise count within cooldown = %d, want 1", raiser.raiseCount())
	}

	svc.now = func() time.Time { return base.Add(61 * time.Second) }
	svc.IngestSample(ctx, models.MotionSample{X: 30})
	if raiser.raiseCount() != 2 {
		t.Fatalf("raise count after cooldown = %d, want 2", raiser.raiseCount())
	}
}

func TestMotionPausedDropsSamples(t *testing.T) {
	svc, raiser, _ := newMotionFixture()

	svc.SetPaused(true)
	if svc.IngestSample(context.Background(), models.MotionSample{X: 50}) {
		t.Fatal("paused watcher raised a candidate")
	}
	if raiser.raiseCount() != 0 {
		t.Fatalf("raise count = %d, want 0", raiser.raiseCount())
	}
}
