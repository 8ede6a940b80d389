package services

import (
	"context"
	"sync"
	"time"

	"safeher/interfaces"
	"safeher/models"
	"safeher/repositories"
	"safeher/utils"

	"github.com/sirupsen/logrus"
)

// minTrackDistance filters GPS jitter out of the breadcrumb trail.
const minTrackDistance = 5.0 // meters

// JourneyService owns the single live journey: planning waypoints, the
// active breadcrumb trail with accumulated distance, and completion. Each
// accepted fix is also handed to the geofence engine for waypoint and
// deviation checks.
type JourneyService struct {
	journeyRepo *repositories.JourneyRepository
	geofence    *GeofenceService
	location    interfaces.LocationProvider
	logger      interfaces.EventLogger

	mu          sync.Mutex
	state       models.JourneyState
	watchHandle int
	pausedAt    *time.Time
}

func NewJourneyService(
	journeyRepo *repositories.JourneyRepository,
	geofence *GeofenceService,
	location interfaces.LocationProvider,
	logger interfaces.EventLogger,
) *JourneyService {
	svc := &JourneyService{
		journeyRepo: journeyRepo,
		geofence:    geofence,
		location:    location,
		logger:      logger,
		state:       models.JourneyState{Phase: models.JourneyPlanning},
	}
	svc.restore()
	return svc
}

// restore reloads a persisted journey so an app restart mid-journey does
// not lose the route. An interrupted active journey resumes tracking.
func (s *JourneyService) restore() {
	if s.journeyRepo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	saved, err := s.journeyRepo.Load(ctx)
	if err != nil || saved == nil {
		return
	}
	s.state = *saved
	if s.state.Phase == models.JourneyActive {
		s.watchHandle = s.location.Watch(s.onFix)
		logrus.Info("Resumed active journey after restart")
	}
}

func (s *JourneyService) Get() models.JourneyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *JourneyService) snapshotLocked() models.JourneyState {
	snap := s.state
	snap.Coords = append([]models.Position(nil), s.state.Coords...)
	snap.Waypoints = append([]models.Waypoint(nil), s.state.Waypoints...)
	return snap
}

func (s *JourneyService) AddWaypoint(ctx context.Context, req models.AddWaypointRequest) (*models.Waypoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase == models.JourneyActive {
		return nil, utils.NewConflictError("cannot edit route while journey is active")
	}
	if len(s.state.Waypoints) >= models.MaxWaypoints {
		return nil, utils.NewValidationError("waypoint limit reached")
	}

	radius := req.Radius
	if radius <= 0 {
		radius = models.DefaultWaypointRadius
	}
	wp := models.Waypoint{
		ID:        utils.GenerateUUID(),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Label:     req.Label,
		Radius:    radius,
	}
	if s.state.Phase == models.JourneyComplete {
		s.state = models.JourneyState{Phase: models.JourneyPlanning}
	}
	s.state.Waypoints = append(s.state.Waypoints, wp)
	s.persistLocked(ctx)
	return &wp, nil
}

func (s *JourneyService) RemoveWaypoint(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase == models.JourneyActive {
		return utils.NewConflictError("cannot edit route while journey is active")
	}
	for i, wp := range s.state.Waypoints {
		if wp.ID == id {
			s.state.Waypoints = append(s.state.Waypoints[:i], s.state.Waypoints[i+1:]...)
			s.persistLocked(ctx)
			return nil
		}
	}
	return utils.NewNotFoundError("waypoint")
}

func (s *JourneyService) Start(ctx context.Context) (*models.JourneyState, error) {
	s.mu.Lock()
	if s.state.Phase == models.JourneyActive {
		s.mu.Unlock()
		return nil, utils.NewConflictError("journey already active")
	}

	now := time.Now()
	s.state.Phase = models.JourneyActive
	s.state.StartedAt = &now
	s.state.CompletedAt = nil
	s.state.DistanceMeters = 0
	s.state.Coords = nil
	s.state.IsDeviated = false
	s.state.PausedDuration = 0
	s.pausedAt = nil
	for i := range s.state.Waypoints {
		s.state.Waypoints[i].Reached = false
	}
	s.persistLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.geofence.Reset()
	s.watchHandle = s.location.Watch(s.onFix)

	s.logger.LogEvent(ctx, models.EventJourneyStarted, models.EventExtra{
		Journey: models.EventJourney{Points: len(snap.Waypoints)},
	})
	logrus.WithField("waypoints", len(snap.Waypoints)).Info("Journey started")
	return &snap, nil
}

func (s *JourneyService) Complete(ctx context.Context) (*models.JourneyState, error) {
	s.mu.Lock()
	if s.state.Phase != models.JourneyActive {
		s.mu.Unlock()
		return nil, utils.NewConflictError("no active journey")
	}

	now := time.Now()
	s.state.Phase = models.JourneyComplete
	s.state.CompletedAt = &now
	s.state.IsDeviated = false
	if s.pausedAt != nil {
		s.state.PausedDuration += now.Sub(*s.pausedAt).Milliseconds()
		s.pausedAt = nil
	}
	snap := s.snapshotLocked()
	s.persistLocked(ctx)
	handle := s.watchHandle
	s.watchHandle = 0
	s.mu.Unlock()

	if handle != 0 {
		s.location.ClearWatch(handle)
	}
	s.geofence.Reset()

	duration := 0
	if snap.StartedAt != nil {
		duration = int(now.Sub(*snap.StartedAt).Seconds())
	}
	s.logger.LogEvent(ctx, models.EventJourneyCompleted, models.EventExtra{
		Journey: models.EventJourney{
			DistanceMeters: snap.DistanceMeters,
			DurationSec:    duration,
			Points:         len(snap.Coords),
		},
	})
	logrus.WithFields(logrus.Fields{
		"distance": utils.FormatDistance(snap.DistanceMeters),
		"duration": utils.FormatDuration(now.Sub(valueOrNow(snap.StartedAt))),
	}).Info("Journey completed")
	return &snap, nil
}

func valueOrNow(t *time.Time) time.Time {
	if t == nil {
		return time.Now()
	}
	return *t
}

// Reset clears the route and returns to planning. Not allowed while a
// journey is active.
func (s *JourneyService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase == models.JourneyActive {
		return utils.NewConflictError("cannot reset an active journey")
	}
	s.state = models.JourneyState{Phase: models.JourneyPlanning}
	s.pausedAt = nil
	if s.journeyRepo != nil {
		if err := s.journeyRepo.Clear(ctx); err != nil {
			logrus.WithError(err).Error("Failed to clear persisted journey")
		}
	}
	return nil
}

// Pause suspends tracking without ending the journey: the location watch
// is torn down and the paused time is accounted separately from travel
// time.
func (s *JourneyService) Pause(ctx context.Context) (*models.JourneyState, error) {
	s.mu.Lock()
	if s.state.Phase != models.JourneyActive {
		s.mu.Unlock()
		return nil, utils.NewConflictError("no active journey")
	}
	if s.pausedAt != nil {
		s.mu.Unlock()
		return nil, utils.NewConflictError("journey already paused")
	}
	s.pausedAt = utils.TimePtr(time.Now())
	handle := s.watchHandle
	s.watchHandle = 0
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if handle != 0 {
		s.location.ClearWatch(handle)
	}
	logrus.Info("Journey paused")
	return &snap, nil
}

// Resume restarts tracking after a pause and folds the paused span into
// PausedDuration.
func (s *JourneyService) Resume(ctx context.Context) (*models.JourneyState, error) {
	s.mu.Lock()
	if s.state.Phase != models.JourneyActive || s.pausedAt == nil {
		s.mu.Unlock()
		return nil, utils.NewConflictError("journey is not paused")
	}
	s.state.PausedDuration += time.Since(*s.pausedAt).Milliseconds()
	s.pausedAt = nil
	s.persistLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.watchHandle = s.location.Watch(s.onFix)
	logrus.WithField("pausedTotal", snap.PausedDuration).Info("Journey resumed")
	return &snap, nil
}

// onFix is the location watcher for the active journey: breadcrumb, distance
// accumulation, then geofence evaluation.
func (s *JourneyService) onFix(pos models.Position) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.mu.Lock()
	if s.state.Phase != models.JourneyActive {
		s.mu.Unlock()
		return
	}

	if n := len(s.state.Coords); n > 0 {
		prev := s.state.Coords[n-1]
		step := utils.CalculateDistance(prev.Latitude, prev.Longitude, pos.Latitude, pos.Longitude)
		if step < minTrackDistance {
			s.mu.Unlock()
			return
		}
		s.state.DistanceMeters += step
	}
	s.state.Coords = append(s.state.Coords, pos)

	state := &s.state
	s.geofence.Evaluate(ctx, state, pos)
	s.persistLocked(ctx)
	s.mu.Unlock()
}

func (s *JourneyService) persistLocked(ctx context.Context) {
	if s.journeyRepo == nil {
		return
	}
	if err := s.journeyRepo.Save(ctx, &s.state); err != nil {
		logrus.WithError(err).Error("Failed to persist journey")
	}
}
