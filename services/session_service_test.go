package services

import (
	"context"
	"testing"
	"time"

	"safeher/config"
	"safeher/models"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

type sessionFixture struct {
	svc       *SessionService
	commander *fakeCommander
	recorder  *fakeRecorder
	disp      *fakeDispatcher
	logger    *fakeLogger
	events    *fakeEvents
}

func newSessionFixture() *sessionFixture {
	cfg := &config.Config{
		CountdownDuration: 60 * time.Millisecond,
		LocationBudget:    time.Second,
	}
	f := &sessionFixture{
		commander: &fakeCommander{connected: true},
		recorder:  &fakeRecorder{},
		disp:      &fakeDispatcher{result: models.DispatchResult{Attempted: 1, Succeeded: 1}},
		logger:    &fakeLogger{},
		events:    &fakeEvents{},
	}
	loc := &fakeLocation{fix: &models.Position{Latitude: 12.97, Longitude: 77.59, Timestamp: time.Now()}}
	f.svc = NewSessionService(cfg, f.commander, f.recorder, f.disp, loc, f.logger, f.events)
	f.svc.cooldownDuration = 50 * time.Millisecond
	return f
}

func TestManualSOSActivatesImmediately(t *testing.T) {
	f := newSessionFixture()

	status := f.svc.TriggerSOS(context.Background())

	if status.State != models.SessionActive {
		t.Fatalf("state = %s, want %s", status.State, models.SessionActive)
	}
	if status.ThreatScore != 100 {
		t.Errorf("threat score = %d, want 100", status.ThreatScore)
	}
	if len(f.recorder.acquired) != 1 || f.recorder.acquired[0].reason != models.SourceManual {
		t.Errorf("recorder acquired = %+v, want one acquire with reason %q", f.recorder.acquired, models.SourceManual)
	}
	if f.disp.notifyCount() != 1 {
		t.Errorf("dispatch count = %d, want 1", f.disp.notifyCount())
	}
	if f.commander.callCount("StartSiren") != 1 {
		t.Errorf("siren starts = %d, want 1", f.commander.callCount("StartSiren"))
	}
	if f.logger.count(models.EventSOSTriggered) != 1 {
		t.Errorf("sos_triggered events = %d, want 1", f.logger.count(models.EventSOSTriggered))
	}
}

func TestVoiceCandidateStartsCountdown(t *testing.T) {
	f := newSessionFixture()

	f.svc.RaiseCandidate(context.Background(), models.SourceVoice, models.EventTrigger{Keyword: "help me"})

	status := f.svc.Status()
	if status.State != models.SessionCountdown {
		t.Fatalf("state = %s, want %s", status.State, models.SessionCountdown)
	}
	if f.commander.callCount("ShowCountdown") != 1 {
		t.Errorf("countdown shown %d times, want 1", f.commander.callCount("ShowCountdown"))
	}
	if len(f.recorder.acquired) != 0 {
		t.Errorf("recorder acquired during countdown: %+v", f.recorder.acquired)
	}
}

func TestCountdownCancelReturnsIdleWithZeroSideEffects(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	f.svc.RaiseCandidate(ctx, models.SourceVoice, models.EventTrigger{Keyword: "help me"})
	if _, err := f.svc.Cancel(ctx, "false alarm"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if got := f.svc.Status().State; got != models.SessionIdle {
		t.Fatalf("state = %s, want %s", got, models.SessionIdle)
	}
	if len(f.recorder.acquired) != 0 {
		t.Errorf("recorder acquired after cancel: %+v", f.recorder.acquired)
	}
	if f.disp.notifyCount() != 0 {
		t.Errorf("dispatch count = %d, want 0", f.disp.notifyCount())
	}
	if f.logger.count(models.EventVoiceCancelled) != 1 {
		t.Errorf("voice_cancelled events = %d, want 1", f.logger.count(models.EventVoiceCancelled))
	}

	// Countdown timer must be dead: nothing activates later.
	time.Sleep(100 * time.Millisecond)
	if got := f.svc.Status().State; got != models.SessionIdle {
		t.Errorf("state after countdown window = %s, want %s", got, models.SessionIdle)
	}
	if f.disp.notifyCount() != 0 {
		t.Errorf("dispatch after cancelled countdown = %d, want 0", f.disp.notifyCount())
	}
}

func TestCountdownExpiryActivatesOnce(t *testing.T) {
	f := newSessionFixture()

	f.svc.RaiseCandidate(context.Background(), models.SourceVoice, models.EventTrigger{Keyword: "help me"})

	waitFor(t, time.Second, func() bool {
		return f.svc.Status().State == models.SessionActive
	})

	if f.disp.notifyCount() != 1 {
		t.Errorf("dispatch count = %d, want exactly 1", f.disp.notifyCount())
	}
	if len(f.recorder.acquired) != 1 || f.recorder.acquired[0].reason != models.SourceVoice {
		t.Errorf("recorder acquired = %+v, want one acquire with reason %q", f.recorder.acquired, models.SourceVoice)
	}
	if got := f.svc.Status().ThreatScore; got != 30 {
		t.Errorf("threat score = %d, want 30", got)
	}
}

func TestManualSOSOverridesPendingCountdown(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	f.svc.RaiseCandidate(ctx, models.SourceVoice, models.EventTrigger{Keyword: "help me"})
	if got := f.svc.Status().State; got != models.SessionCountdown {
		t.Fatalf("state = %s, want %s", got, models.SessionCountdown)
	}

	status := f.svc.TriggerSOS(ctx)

	if status.State != models.SessionActive {
		t.Fatalf("state = %s, want %s after panic button", status.State, models.SessionActive)
	}
	if status.Source != models.SourceManual {
		t.Errorf("source = %s, want %s", status.Source, models.SourceManual)
	}
	if status.ThreatScore != 100 {
		t.Errorf("threat score = %d, want 100", status.ThreatScore)
	}
	if f.disp.notifyCount() != 1 {
		t.Errorf("dispatch count = %d, want 1", f.disp.notifyCount())
	}
	if len(f.recorder.acquired) != 1 || f.recorder.acquired[0].reason != models.SourceManual {
		t.Errorf("recorder acquired = %+v, want one manual acquire", f.recorder.acquired)
	}
	if f.commander.callCount("HideCountdown") == 0 {
		t.Error("countdown UI left showing after manual override")
	}

	// The voice countdown timer is dead: nothing double-activates later.
	time.Sleep(100 * time.Millisecond)
	if f.disp.notifyCount() != 1 {
		t.Errorf("dispatch count after countdown window = %d, want 1", f.disp.notifyCount())
	}
	if got := f.svc.Status().Source; got != models.SourceManual {
		t.Errorf("source drifted to %s after countdown window", got)
	}
}

func TestReentrantRaiseWhileActiveIsNoOp(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	f.svc.TriggerSOS(ctx)
	f.svc.RaiseCandidate(ctx, models.SourceMotion, models.EventTrigger{MotionMagnitude: 25})
	f.svc.RaiseCandidate(ctx, models.SourceVoice, models.EventTrigger{Keyword: "help me"})

	if f.disp.notifyCount() != 1 {
		t.Errorf("dispatch count = %d, want 1", f.disp.notifyCount())
	}
	if got := f.svc.Status().Source; got != models.SourceManual {
		t.Errorf("source = %s, want %s", got, models.SourceManual)
	}
}

func TestDeactivateCleansUpEverything(t *testing.T) {
	f := newSessionFixture()
	f.svc.cooldownDuration = 5 * time.Second
	f.disp.result = models.DispatchResult{Attempted: 2, Succeeded: 2, LiveUpdates: true}
	ctx := context.Background()

	f.svc.TriggerSOS(ctx)
	if _, err := f.svc.Cancel(ctx, "I'm safe"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if f.commander.callCount("StopSiren") != 1 {
		t.Errorf("siren stops = %d, want 1", f.commander.callCount("StopSiren"))
	}
	if f.recorder.stopped != 1 {
		t.Errorf("recorder stops = %d, want 1", f.recorder.stopped)
	}
	if f.disp.cancelled != 1 {
		t.Errorf("live update cancels = %d, want 1", f.disp.cancelled)
	}
	if got := f.svc.Status().ThreatScore; got != 0 {
		t.Errorf("threat score after deactivate = %d, want 0", got)
	}

	// Sensor candidates are ignored during cooldown; manual is not.
	if got := f.svc.Status().State; got != models.SessionCooldown {
		t.Fatalf("state = %s, want %s", got, models.SessionCooldown)
	}
	f.svc.RaiseCandidate(ctx, models.SourceMotion, models.EventTrigger{})
	if f.disp.notifyCount() != 1 {
		t.Errorf("motion candidate escalated during cooldown")
	}
	f.svc.TriggerSOS(ctx)
	if f.disp.notifyCount() != 2 {
		t.Errorf("manual SOS blocked during cooldown")
	}
}

func TestCooldownExpiresBackToIdle(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	f.svc.TriggerSOS(ctx)
	if _, err := f.svc.Cancel(ctx, "I'm safe"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	waitFor(t, time.Second, func() bool {
		return f.svc.Status().State == models.SessionIdle
	})
}

func TestCancelWithoutSessionErrors(t *testing.T) {
	f := newSessionFixture()

	if _, err := f.svc.Cancel(context.Background(), "nothing"); err == nil {
		t.Fatal("expected error cancelling with no session")
	}
}

func TestDeviationCandidateRaisesLighterAlert(t *testing.T) {
	f := newSessionFixture()

	f.svc.RaiseCandidate(context.Background(), models.SourceDeviation, models.EventTrigger{DistanceMeters: 200})

	status := f.svc.Status()
	if status.State != models.SessionActive {
		t.Fatalf("state = %s, want %s", status.State, models.SessionActive)
	}
	if len(f.recorder.acquired) != 0 {
		t.Errorf("deviation alert acquired the recorder: %+v", f.recorder.acquired)
	}
	if f.commander.callCount("StartSiren") != 0 {
		t.Errorf("deviation alert started the siren")
	}
	if f.disp.notifyCount() != 1 {
		t.Errorf("dispatch count = %d, want 1", f.disp.notifyCount())
	}
}

func TestSafeModePausesWatchers(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	cfg := &config.Config{MotionThreshold: 20, MotionCooldown: time.Minute}
	raiser := &fakeRaiser{}
	motion := NewMotionService(cfg, f.logger, raiser)
	voice := NewVoiceService(f.logger, raiser, f.commander)
	f.svc.AttachWatchers(motion, voice)

	f.svc.SetSafeMode(ctx, true)

	if motion.IngestSample(ctx, models.MotionSample{X: 30}) {
		t.Error("motion raised while safe mode on")
	}
	if kw := voice.IngestTranscript(ctx, models.TranscriptBatch{Transcript: "please help me"}); kw != "" {
		t.Errorf("voice matched %q while safe mode on", kw)
	}
	if f.logger.count(models.EventSafeModeOn) != 1 {
		t.Errorf("safe_mode_on events = %d, want 1", f.logger.count(models.EventSafeModeOn))
	}

	f.svc.SetSafeMode(ctx, false)
	if !motion.IngestSample(ctx, models.MotionSample{X: 30}) {
		t.Error("motion did not raise after safe mode off")
	}
}
