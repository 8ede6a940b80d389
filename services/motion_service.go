package services

import (
	"context"
	"math"
	"sync"
	"time"

	"safeher/config"
	"safeher/interfaces"
	"safeher/models"

	"github.com/sirupsen/logrus"
)

// MotionService watches accelerometer samples pushed from the device for a
// shake or fall signature: any single axis exceeding the threshold. Raises
// are cooldown-gated so one violent movement produces one candidate, not a
// burst. Safe mode pauses the watcher entirely.
type MotionService struct {
	cfg    *config.Config
	logger interfaces.EventLogger
	raiser interfaces.CandidateRaiser

	mu          sync.Mutex
	paused      bool
	lastRaiseAt time.Time

	now func() time.Time
}

func NewMotionService(cfg *config.Config, logger interfaces.EventLogger, raiser interfaces.CandidateRaiser) *MotionService {
	return &MotionService{
		cfg:    cfg,
		logger: logger,
		raiser: raiser,
		now:    time.Now,
	}
}

func (s *MotionService) SetPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
	logrus.WithField("paused", paused).Info("Motion watcher state changed")
}

// IngestSample evaluates one accelerometer reading. Returns true when the
// sample raised a candidate.
func (s *MotionService) IngestSample(ctx context.Context, sample models.MotionSample) bool {
	magnitude := math.Max(math.Abs(sample.X), math.Max(math.Abs(sample.Y), math.Abs(sample.Z)))
	if magnitude < s.cfg.MotionThreshold {
		return false
	}

	s.mu.Lock()
	if s.paused {
		s.mu.Unlock()
		return false
	}
	now := s.now()
	if !s.lastRaiseAt.IsZero() && now.Sub(s.lastRaiseAt) < s.cfg.MotionCooldown {
		s.mu.Unlock()
		return false
	}
	s.lastRaiseAt = now
	s.mu.Unlock()

	trigger := models.EventTrigger{
		Method:          models.SourceMotion,
		MotionMagnitude: magnitude,
	}
	s.logger.LogEvent(ctx, models.EventMotionAlert, models.EventExtra{Trigger: trigger})
	logrus.WithField("magnitude", magnitude).Warn("Violent motion detected")

	s.raiser.RaiseCandidate(ctx, models.SourceMotion, trigger)
	return true
}
