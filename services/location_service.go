package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"safeher/models"
	"safeher/utils"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const lastFixCacheKey = "location:last_fix"

// Accuracy profiles for one-shot fixes. Emergency callers try Quick first
// and fall back to Patient; the two together stay inside the overall
// location budget.
var (
	ProfileQuick   = models.AccuracyProfile{Budget: 3 * time.Second, MaxAge: 60 * time.Second}
	ProfilePatient = models.AccuracyProfile{Budget: 15 * time.Second, MaxAge: 5 * time.Minute}
)

// LocationService normalizes device position reports into a single stream.
// The device pushes fixes over the bridge; watchers fan out synchronously
// and one-shot callers wait on the next fix with a bounded budget.
type LocationService struct {
	redis *redis.Client

	mu       sync.RWMutex
	lastFix  *models.Position
	watchers map[int]func(models.Position)
	nextID   int

	waitMu  sync.Mutex
	waiters []chan models.Position
}

func NewLocationService(redisClient *redis.Client) *LocationService {
	svc := &LocationService{
		redis:    redisClient,
		watchers: make(map[int]func(models.Position)),
	}
	svc.restoreCached()
	return svc
}

// IngestFix accepts a position report from the device. Invalid coordinates
// are rejected; accepted fixes update the cache and wake all watchers and
// pending one-shot waiters.
func (s *LocationService) IngestFix(ctx context.Context, pos models.Position) error {
	if !utils.IsValidCoordinate(pos.Latitude, pos.Longitude) {
		return utils.NewValidationError("invalid coordinates")
	}
	if pos.Timestamp.IsZero() {
		pos.Timestamp = time.Now()
	}

	s.mu.Lock()
	// Some devices omit speed; derive it from the previous fix.
	if pos.Speed == 0 && s.lastFix != nil {
		pos.Speed = utils.CalculateSpeed(
			s.lastFix.Latitude, s.lastFix.Longitude, s.lastFix.Timestamp.Unix(),
			pos.Latitude, pos.Longitude, pos.Timestamp.Unix(),
		)
	}
	s.lastFix = &pos
	callbacks := make([]func(models.Position), 0, len(s.watchers))
	for _, fn := range s.watchers {
		callbacks = append(callbacks, fn)
	}
	s.mu.Unlock()

	s.cacheFix(ctx, pos)

	for _, fn := range callbacks {
		fn(pos)
	}

	s.waitMu.Lock()
	waiters := s.waiters
	s.waiters = nil
	s.waitMu.Unlock()
	for _, ch := range waiters {
		select {
		case ch <- pos:
		default:
		}
	}

	return nil
}

// GetOnce returns a fix within the profile's budget, preferring a cached
// fix no older than MaxAge. Returns nil when nothing arrives in time: the
// emergency path degrades to a no-location alert instead of failing.
func (s *LocationService) GetOnce(ctx context.Context, profile models.AccuracyProfile) *models.Position {
	s.mu.RLock()
	last := s.lastFix
	s.mu.RUnlock()

	if last != nil && time.Since(last.Timestamp) <= profile.MaxAge {
		return last
	}

	ch := make(chan models.Position, 1)
	s.waitMu.Lock()
	s.waiters = append(s.waiters, ch)
	s.waitMu.Unlock()

	timer := time.NewTimer(profile.Budget)
	defer timer.Stop()

	select {
	case pos := <-ch:
		return &pos
	case <-timer.C:
		logrus.WithField("budget", profile.Budget).Warn("Location fix timed out")
		return nil
	case <-ctx.Done():
		return nil
	}
}

func (s *LocationService) Watch(fn func(models.Position)) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.watchers[id] = fn
	return id
}

func (s *LocationService) ClearWatch(handle int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watchers, handle)
}

func (s *LocationService) LastFix() *models.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFix
}

func (s *LocationService) cacheFix(ctx context.Context, pos models.Position) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(pos)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, lastFixCacheKey, data, time.Hour).Err(); err != nil {
		logrus.WithError(err).Debug("Failed to cache location fix")
	}
}

func (s *LocationService) restoreCached() {
	if s.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := s.redis.Get(ctx, lastFixCacheKey).Bytes()
	if err != nil {
		return
	}
	var pos models.Position
	if err := json.Unmarshal(data, &pos); err != nil {
		return
	}
	s.lastFix = &pos
}
