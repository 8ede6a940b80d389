package services

import (
	"context"
	"sync"
	"time"

	"safeher/config"
	"safeher/interfaces"
	"safeher/models"
	"safeher/utils"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// safeModeCacheKey persists the safe-mode switch across restarts.
const safeModeCacheKey = "safety:safe_mode"

// sessionCooldown keeps sensor candidates from re-arming the alarm in the
// seconds right after the user said they are safe. Manual SOS ignores it.
const sessionCooldown = 10 * time.Second

// alarmVibrationPattern is the repeating pulse used while the alarm runs.
var alarmVibrationPattern = []int{400, 150, 400, 150, 800}

// sourcePolicy is how one trigger source escalates: whether it gets a
// cancellable countdown, how much threat it adds, and whether it arms the
// full alarm with evidence capture or sends a lighter contact alert.
type sourcePolicy struct {
	countdown   bool
	threatDelta int
	record      bool
	video       bool
	rearCamera  bool
	siren       bool
}

var sourcePolicies = map[string]sourcePolicy{
	models.SourceManual:    {countdown: false, threatDelta: 100, record: true, video: true, rearCamera: false, siren: true},
	models.SourceMotion:    {countdown: false, threatDelta: 15, record: true, video: true, rearCamera: true, siren: true},
	models.SourceVoice:     {countdown: true, threatDelta: 30, record: true, video: true, rearCamera: true, siren: true},
	models.SourceDeviation: {countdown: false, threatDelta: 20},
	models.SourceCheckIn:   {countdown: false, threatDelta: 25},
}

// SessionService is the emergency session controller. All transitions are
// serialized by one mutex; at most one session is ever live. Sensor
// candidates may pass through a cancellable countdown per their source
// policy; manual SOS escalates immediately. Once a transition to Active is
// confirmed, every substep is best-effort: a failed recorder or dispatcher
// never stops the alarm from sounding.
type SessionService struct {
	cfg        *config.Config
	commander  interfaces.DeviceCommander
	recorder   interfaces.EvidenceRecorder
	dispatcher interfaces.AlertDispatcher
	location   interfaces.LocationProvider
	logger     interfaces.EventLogger
	events     interfaces.EventBroadcaster

	motion *MotionService
	voice  *VoiceService
	redis  *redis.Client

	mu                sync.Mutex
	session           models.EmergencySession
	countdownTimer    *time.Timer
	countdownDeadline time.Time
	cooldownTimer     *time.Timer
	safeMode          bool

	cooldownDuration time.Duration
}

func NewSessionService(
	cfg *config.Config,
	commander interfaces.DeviceCommander,
	recorder interfaces.EvidenceRecorder,
	dispatcher interfaces.AlertDispatcher,
	location interfaces.LocationProvider,
	logger interfaces.EventLogger,
	events interfaces.EventBroadcaster,
) *SessionService {
	return &SessionService{
		cfg:              cfg,
		commander:        commander,
		recorder:         recorder,
		dispatcher:       dispatcher,
		location:         location,
		logger:           logger,
		events:           events,
		session:          models.EmergencySession{State: models.SessionIdle},
		cooldownDuration: sessionCooldown,
	}
}

// AttachWatchers wires the sensor watchers the controller pauses during
// safe mode. Both are in this package; the raise path flows the other way
// through the CandidateRaiser port.
func (s *SessionService) AttachWatchers(motion *MotionService, voice *VoiceService) {
	s.motion = motion
	s.voice = voice
}

// AttachStateStore restores the persisted safe-mode switch and keeps it
// written through on changes. Call after AttachWatchers so a restored
// safe mode pauses them. A nil client disables persistence.
func (s *SessionService) AttachStateStore(client *redis.Client) {
	s.redis = client
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if val, err := client.Get(ctx, safeModeCacheKey).Result(); err == nil && val == "1" {
		s.SetSafeMode(ctx, true)
	}
}

func (s *SessionService) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.State == models.SessionActive
}

func (s *SessionService) Status() models.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *SessionService) statusLocked() models.SessionStatus {
	status := models.SessionStatus{
		State:       s.session.State,
		Source:      s.session.Source,
		ThreatScore: s.session.ThreatScore,
		Recording:   s.recorder.IsRecording(),
	}
	if !s.session.StartedAt.IsZero() {
		status.StartedAt = utils.TimePtr(s.session.StartedAt)
	}
	if s.session.State == models.SessionCountdown {
		if remaining := time.Until(s.countdownDeadline); remaining > 0 {
			status.CountdownLeft = int(remaining.Seconds() + 0.5)
		}
	}
	return status
}

// TriggerSOS is the manual panic button: straight to Active, no countdown.
func (s *SessionService) TriggerSOS(ctx context.Context) models.SessionStatus {
	s.RaiseCandidate(ctx, models.SourceManual, models.EventTrigger{Method: "button"})
	return s.Status()
}

// RaiseCandidate is the single entry point for every trigger path. While a
// session is Active, further candidates are no-ops. During a pending
// countdown and the post-deactivation cooldown only manual SOS passes:
// the panic button escalates immediately from any state short of Active.
func (s *SessionService) RaiseCandidate(ctx context.Context, source string, trigger models.EventTrigger) {
	policy, ok := sourcePolicies[source]
	if !ok {
		logrus.WithField("source", source).Warn("Unknown trigger source ignored")
		return
	}

	s.mu.Lock()
	switch s.session.State {
	case models.SessionActive:
		s.mu.Unlock()
		logrus.WithField("source", source).Debug("Candidate ignored, session already live")
		return
	case models.SessionCountdown:
		if source != models.SourceManual {
			s.mu.Unlock()
			logrus.WithField("source", source).Debug("Candidate ignored, countdown already pending")
			return
		}
		if s.countdownTimer != nil {
			s.countdownTimer.Stop()
			s.countdownTimer = nil
		}
		s.mu.Unlock()
		s.commander.HideCountdown()
		s.activate(ctx, source, trigger, policy)
		return
	case models.SessionCooldown:
		if source != models.SourceManual {
			s.mu.Unlock()
			logrus.WithField("source", source).Info("Candidate ignored during cooldown")
			return
		}
		if s.cooldownTimer != nil {
			s.cooldownTimer.Stop()
			s.cooldownTimer = nil
		}
	}

	if policy.countdown {
		s.startCountdownLocked(source, trigger)
		s.mu.Unlock()
		s.events.BroadcastSession(s.Status())
		return
	}
	s.mu.Unlock()

	s.activate(ctx, source, trigger, policy)
}

func (s *SessionService) startCountdownLocked(source string, trigger models.EventTrigger) {
	seconds := int(s.cfg.CountdownDuration.Seconds())
	s.session.State = models.SessionCountdown
	s.session.Source = source
	s.countdownDeadline = time.Now().Add(s.cfg.CountdownDuration)
	s.countdownTimer = time.AfterFunc(s.cfg.CountdownDuration, func() {
		s.countdownExpired(source, trigger)
	})

	s.commander.ShowCountdown(seconds, source)
	s.commander.Vibrate([]int{200, 100, 200}, 0)
	logrus.WithFields(logrus.Fields{
		"source":  source,
		"seconds": seconds,
	}).Warn("Confirmation countdown started")
}

func (s *SessionService) countdownExpired(source string, trigger models.EventTrigger) {
	s.mu.Lock()
	if s.session.State != models.SessionCountdown || s.session.Source != source {
		s.mu.Unlock()
		return
	}
	s.countdownTimer = nil
	s.mu.Unlock()

	s.commander.HideCountdown()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	s.activate(ctx, source, trigger, sourcePolicies[source])
}

// activate performs the transition to Active. Every substep is attempted
// even when an earlier one fails.
func (s *SessionService) activate(ctx context.Context, source string, trigger models.EventTrigger, policy sourcePolicy) {
	s.mu.Lock()
	if s.session.State == models.SessionActive {
		s.mu.Unlock()
		return
	}
	s.session = models.EmergencySession{
		State:       models.SessionActive,
		Source:      source,
		StartedAt:   time.Now(),
		ThreatScore: utils.ClampInt(policy.threatDelta, 0, 100),
	}
	s.mu.Unlock()

	eventType := models.EventEmergencyActive
	if source == models.SourceManual {
		eventType = models.EventSOSTriggered
	}
	s.logger.LogEvent(ctx, eventType, models.EventExtra{Trigger: trigger})

	if policy.record {
		handle, err := s.recorder.Acquire(ctx, source, policy.video, policy.rearCamera)
		if err != nil {
			logrus.WithError(err).Warn("Evidence recorder unavailable, continuing without it")
			if utils.HasCode(err, utils.CodePermissionDenied) {
				s.commander.Toast("Camera or microphone unavailable, continuing without recording", "warning")
			}
		} else {
			s.mu.Lock()
			s.session.RecordingHandle = handle.ID
			s.mu.Unlock()
		}
	}

	if policy.siren {
		s.commander.StartSiren()
		s.commander.Vibrate(alarmVibrationPattern, 500)
		s.commander.ShowAlarmOverlay("EMERGENCY ACTIVE")
		s.logger.LogEvent(ctx, models.EventSirenActivated, models.EventExtra{
			Trigger: models.EventTrigger{Method: source},
		})
	}

	loc := s.location.GetOnce(ctx, ProfileQuick)
	if loc == nil {
		loc = s.location.GetOnce(ctx, ProfilePatient)
	}
	result := s.dispatcher.Notify(ctx, source, loc)
	s.mu.Lock()
	s.session.LiveUpdateActive = result.LiveUpdates
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"source":    source,
		"attempted": result.Attempted,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	}).Warn("Emergency session active")

	s.events.BroadcastSession(s.Status())
}

// Cancel ends a running countdown or deactivates an active session.
func (s *SessionService) Cancel(ctx context.Context, reason string) (models.SessionStatus, error) {
	s.mu.Lock()
	state := s.session.State
	source := s.session.Source
	s.mu.Unlock()

	switch state {
	case models.SessionCountdown:
		s.cancelCountdown(ctx, source)
		return s.Status(), nil
	case models.SessionActive:
		s.deactivate(ctx, source)
		return s.Status(), nil
	default:
		return s.Status(), utils.NewConflictError("no session to cancel")
	}
}

func (s *SessionService) cancelCountdown(ctx context.Context, source string) {
	s.mu.Lock()
	if s.session.State != models.SessionCountdown {
		s.mu.Unlock()
		return
	}
	if s.countdownTimer != nil {
		s.countdownTimer.Stop()
		s.countdownTimer = nil
	}
	s.session = models.EmergencySession{State: models.SessionIdle}
	s.mu.Unlock()

	s.commander.HideCountdown()
	s.commander.StopVibration()
	s.logger.LogEvent(ctx, cancelledEventFor(source), models.EventExtra{
		Trigger: models.EventTrigger{Method: source},
	})
	logrus.WithField("source", source).Info("Countdown cancelled")
	s.events.BroadcastSession(s.Status())
}

func (s *SessionService) deactivate(ctx context.Context, source string) {
	s.mu.Lock()
	if s.session.State != models.SessionActive {
		s.mu.Unlock()
		return
	}
	s.session = models.EmergencySession{State: models.SessionCooldown}
	s.cooldownTimer = time.AfterFunc(s.cooldownDuration, s.cooldownExpired)
	s.mu.Unlock()

	s.commander.StopSiren()
	s.commander.StopVibration()
	s.commander.HideAlarmOverlay()
	s.recorder.Stop(ctx)
	s.dispatcher.CancelLiveUpdates()

	s.logger.LogEvent(ctx, cancelledEventFor(source), models.EventExtra{
		Trigger: models.EventTrigger{Method: source},
	})
	logrus.WithField("source", source).Info("Emergency session deactivated")
	s.events.BroadcastSession(s.Status())
}

func (s *SessionService) cooldownExpired() {
	s.mu.Lock()
	if s.session.State == models.SessionCooldown {
		s.session.State = models.SessionIdle
	}
	s.cooldownTimer = nil
	s.mu.Unlock()
	s.events.BroadcastSession(s.Status())
}

func cancelledEventFor(source string) string {
	if source == models.SourceVoice {
		return models.EventVoiceCancelled
	}
	return models.EventSOSCancelled
}

// SetSafeMode pauses or resumes the sensor watchers in one switch.
func (s *SessionService) SetSafeMode(ctx context.Context, enabled bool) {
	s.mu.Lock()
	if s.safeMode == enabled {
		s.mu.Unlock()
		return
	}
	s.safeMode = enabled
	s.mu.Unlock()

	if s.motion != nil {
		s.motion.SetPaused(enabled)
	}
	if s.voice != nil {
		s.voice.SetPaused(enabled)
	}

	if s.redis != nil {
		val := "0"
		if enabled {
			val = "1"
		}
		if err := s.redis.Set(ctx, safeModeCacheKey, val, 0).Err(); err != nil {
			logrus.WithError(err).Debug("Failed to persist safe mode state")
		}
	}

	if enabled {
		s.logger.LogEvent(ctx, models.EventSafeModeOn, models.EventExtra{})
		s.commander.Toast("Safe mode on, watchers paused", "info")
	} else {
		s.logger.LogEvent(ctx, models.EventSafeModeOff, models.EventExtra{})
		s.commander.Toast("Safe mode off, watchers resumed", "info")
	}
}

func (s *SessionService) SafeMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.safeMode
}

// FakeCall shows the fake incoming-call screen as a discreet exit.
func (s *SessionService) FakeCall(ctx context.Context, name, phone string) {
	if name == "" {
		name = "Mom"
	}
	if phone == "" {
		phone = "+1 (555) 010-0199"
	}
	s.commander.ShowFakeCall(name, phone)
	s.logger.LogEvent(ctx, models.EventFakeCallUsed, models.EventExtra{})
}
