package services

import (
	"context"
	"sync"
	"time"

	"safeher/config"
	"safeher/interfaces"
	"safeher/models"
	"safeher/utils"

	"github.com/sirupsen/logrus"
)

// GeofenceService evaluates live positions against the planned route:
// waypoint proximity and route deviation. Waypoint Reached flags are
// monotonic. Deviation is debounced: the user must stay off-route for the
// confirm window before the first alert, and repeat alerts are spaced by
// the repeat interval. Returning under the threshold logs back_on_track
// exactly once per excursion.
type GeofenceService struct {
	cfg    *config.Config
	logger interfaces.EventLogger
	raiser interfaces.CandidateRaiser

	mu           sync.Mutex
	offRouteAt   *time.Time
	deviated     bool
	lastRaisedAt time.Time

	now func() time.Time
}

func NewGeofenceService(cfg *config.Config, logger interfaces.EventLogger, raiser interfaces.CandidateRaiser) *GeofenceService {
	return &GeofenceService{
		cfg:    cfg,
		logger: logger,
		raiser: raiser,
		now:    time.Now,
	}
}

// Evaluate runs one position sample through waypoint and deviation checks.
// It mutates the journey state's waypoint flags and IsDeviated and returns
// the waypoints newly reached by this sample.
func (s *GeofenceService) Evaluate(ctx context.Context, state *models.JourneyState, pos models.Position) []models.Waypoint {
	reached := s.checkWaypoints(ctx, state, pos)
	s.checkDeviation(ctx, state, pos)
	return reached
}

func (s *GeofenceService) checkWaypoints(ctx context.Context, state *models.JourneyState, pos models.Position) []models.Waypoint {
	var newlyReached []models.Waypoint
	for i := range state.Waypoints {
		wp := &state.Waypoints[i]
		if wp.Reached {
			continue
		}
		radius := wp.Radius
		if radius <= 0 {
			radius = models.DefaultWaypointRadius
		}
		fence := utils.GeofenceCircle{
			Center: utils.Coordinate{Latitude: wp.Latitude, Longitude: wp.Longitude},
			Radius: radius,
		}
		if utils.IsWithinGeofence(pos.Latitude, pos.Longitude, fence) {
			wp.Reached = true
			newlyReached = append(newlyReached, *wp)

			s.logger.LogEvent(ctx, models.EventWaypointReached, models.EventExtra{
				Location: &models.EventLocation{
					Latitude:  pos.Latitude,
					Longitude: pos.Longitude,
					Accuracy:  pos.Accuracy,
				},
				Trigger: models.EventTrigger{Method: wp.Label},
			})
			logrus.WithFields(logrus.Fields{
				"waypoint": wp.Label,
				"radius":   utils.FormatDistance(radius),
			}).Info("Waypoint reached")
		}
	}

	if len(newlyReached) > 0 && allReached(state.Waypoints) {
		s.logger.LogEvent(ctx, models.EventRouteCompleted, models.EventExtra{
			Location: &models.EventLocation{
				Latitude:  pos.Latitude,
				Longitude: pos.Longitude,
			},
		})
		logrus.Info("All waypoints reached")
	}
	return newlyReached
}

func allReached(waypoints []models.Waypoint) bool {
	if len(waypoints) == 0 {
		return false
	}
	for _, wp := range waypoints {
		if !wp.Reached {
			return false
		}
	}
	return true
}

func (s *GeofenceService) checkDeviation(ctx context.Context, state *models.JourneyState, pos models.Position) {
	if len(state.Waypoints) < 2 {
		return
	}

	route := make([]utils.Coordinate, 0, len(state.Waypoints))
	for _, wp := range state.Waypoints {
		route = append(route, utils.Coordinate{Latitude: wp.Latitude, Longitude: wp.Longitude})
	}
	distance := utils.DistanceToPolyline(utils.Coordinate{Latitude: pos.Latitude, Longitude: pos.Longitude}, route)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()

	if distance <= s.cfg.DeviationThreshold {
		if s.deviated {
			s.logger.LogEvent(ctx, models.EventBackOnTrack, models.EventExtra{
				Location: &models.EventLocation{Latitude: pos.Latitude, Longitude: pos.Longitude},
			})
			logrus.Info("Back on planned route")
		}
		s.offRouteAt = nil
		s.deviated = false
		state.IsDeviated = false
		return
	}

	if s.offRouteAt == nil {
		t := now
		s.offRouteAt = &t
		return
	}
	if now.Sub(*s.offRouteAt) < s.cfg.DeviationConfirm {
		return
	}
	if s.deviated && now.Sub(s.lastRaisedAt) < s.cfg.DeviationRepeat {
		return
	}

	s.deviated = true
	s.lastRaisedAt = now
	state.IsDeviated = true

	trigger := models.EventTrigger{
		Method:         models.SourceDeviation,
		DistanceMeters: distance,
	}
	s.logger.LogEvent(ctx, models.EventPathDeviation, models.EventExtra{
		Location: &models.EventLocation{Latitude: pos.Latitude, Longitude: pos.Longitude},
		Trigger:  trigger,
	})
	logrus.WithField("distanceMeters", distance).Warn("Path deviation confirmed")

	s.raiser.RaiseCandidate(ctx, models.SourceDeviation, trigger)
}

// Reset clears deviation state when a journey starts or ends.
func (s *GeofenceService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offRouteAt = nil
	s.deviated = false
	s.lastRaisedAt = time.Time{}
}
