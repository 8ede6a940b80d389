package services

import (
	"context"
	"sync"
	"time"

	"safeher/interfaces"
	"safeher/models"
	"safeher/utils"

	"github.com/sirupsen/logrus"
)

// CheckInStatus is the timer snapshot for the UI.
type CheckInStatus struct {
	Running      bool          `json:"running"`
	Interval     time.Duration `json:"intervalMs"`
	Deadline     *time.Time    `json:"deadline,omitempty"`
	RemainingSec int           `json:"remainingSec"`
}

// CheckInService runs the dead-man check-in timer. A check-in re-arms the
// full interval; a missed deadline raises a candidate and does not re-arm,
// one missed check-in means one escalation, not a drumbeat.
type CheckInService struct {
	logger interfaces.EventLogger
	raiser interfaces.CandidateRaiser

	mu       sync.Mutex
	timer    *time.Timer
	interval time.Duration
	deadline time.Time
	running  bool
}

func NewCheckInService(logger interfaces.EventLogger, raiser interfaces.CandidateRaiser) *CheckInService {
	return &CheckInService{
		logger: logger,
		raiser: raiser,
	}
}

func (s *CheckInService) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return utils.NewValidationError("interval must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.interval = interval
	s.running = true
	s.armLocked()

	logrus.WithField("interval", interval).Info("Check-in timer started")
	return nil
}

// CheckIn confirms the user is fine and re-arms the full interval.
func (s *CheckInService) CheckIn(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return utils.NewConflictError("no check-in timer running")
	}
	s.timer.Stop()
	s.armLocked()
	s.mu.Unlock()

	s.logger.LogEvent(ctx, models.EventCheckInOK, models.EventExtra{})
	return nil
}

func (s *CheckInService) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.running = false
	s.mu.Unlock()
	logrus.Info("Check-in timer stopped")
}

func (s *CheckInService) Status() CheckInStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := CheckInStatus{
		Running:  s.running,
		Interval: s.interval,
	}
	if s.running {
		status.Deadline = utils.TimePtr(s.deadline)
		if remaining := time.Until(s.deadline); remaining > 0 {
			status.RemainingSec = int(remaining.Seconds())
		}
	}
	return status
}

func (s *CheckInService) armLocked() {
	s.deadline = time.Now().Add(s.interval)
	s.timer = time.AfterFunc(s.interval, s.expire)
}

func (s *CheckInService) expire() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.timer = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	trigger := models.EventTrigger{Method: models.SourceCheckIn}
	s.logger.LogEvent(ctx, models.EventCheckInMissed, models.EventExtra{Trigger: trigger})
	logrus.Warn("Check-in deadline missed")

	s.raiser.RaiseCandidate(ctx, models.SourceCheckIn, trigger)
}
