package services

import (
	"context"
	"testing"
	"time"

	"safeher/models"
)

func newCheckInFixture() (*CheckInService, *fakeRaiser, *fakeLogger) {
	raiser := &fakeRaiser{}
	logger := &fakeLogger{}
	return NewCheckInService(logger, raiser), raiser, logger
}

func TestCheckInRejectsBadInterval(t *testing.T) {
	svc, _, _ := newCheckInFixture()

	if err := svc.Start(context.Background(), 0); err == nil {
		t.Fatal("zero interval accepted")
	}
}

func TestCheckInBeforeDeadlineNeverRaises(t *testing.T) {
	svc, raiser, logger := newCheckInFixture()
	ctx := context.Background()

	if err := svc.Start(ctx, 80*time.Millisecond); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 3; i++ {
		time.Sleep(40 * time.Millisecond)
		if err := svc.CheckIn(ctx); err != nil {
			t.Fatalf("check-in %d: %v", i, err)
		}
	}
	svc.Stop(ctx)

	if raiser.raiseCount() != 0 {
		t.Fatalf("raise count = %d, want 0", raiser.raiseCount())
	}
	if logger.count(models.EventCheckInOK) != 3 {
		t.Errorf("check_in_ok events = %d, want 3", logger.count(models.EventCheckInOK))
	}
}

func TestCheckInMissedRaisesOnceAndDoesNotRearm(t *testing.T) {
	svc, raiser, logger := newCheckInFixture()

	if err := svc.Start(context.Background(), 30*time.Millisecond); err != nil {
		t.Fatalf("start: %v", err)
	}

	waitFor(t, time.Second, func() bool { return raiser.raiseCount() == 1 })

	if raiser.raised[0].source != models.SourceCheckIn {
		t.Errorf("source = %s, want %s", raiser.raised[0].source, models.SourceCheckIn)
	}
	if logger.count(models.EventCheckInMissed) != 1 {
		t.Errorf("check_in_missed events = %d, want 1", logger.count(models.EventCheckInMissed))
	}
	if svc.Status().Running {
		t.Error("timer still running after missed deadline")
	}

	// No drumbeat after the first escalation.
	time.Sleep(80 * time.Millisecond)
	if raiser.raiseCount() != 1 {
		t.Errorf("raise count = %d, want 1", raiser.raiseCount())
	}
}

func TestCheckInAfterExpiryIsConflict(t *testing.T) {
	svc, raiser, _ := newCheckInFixture()
	ctx := context.Background()

	if err := svc.Start(ctx, 20*time.Millisecond); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, time.Second, func() bool { return raiser.raiseCount() == 1 })

	if err := svc.CheckIn(ctx); err == nil {
		t.Fatal("check-in accepted after timer expired")
	}
}

func TestCheckInStopPreventsEscalation(t *testing.T) {
	svc, raiser, _ := newCheckInFixture()
	ctx := context.Background()

	if err := svc.Start(ctx, 30*time.Millisecond); err != nil {
		t.Fatalf("start: %v", err)
	}
	svc.Stop(ctx)

	time.Sleep(80 * time.Millisecond)
	if raiser.raiseCount() != 0 {
		t.Fatalf("raise count = %d, want 0 after stop", raiser.raiseCount())
	}
	if svc.Status().Running {
		t.Error("status running after stop")
	}
}
