package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"googlemaps.github.io/maps"
)

// GeocodeService resolves coordinates to street addresses for event
// enrichment. Without an API key it degrades to a coordinate string so
// events always carry something readable.
type GeocodeService struct {
	client *maps.Client
}

func NewGeocodeService(apiKey string) *GeocodeService {
	if apiKey == "" {
		logrus.Info("No maps API key configured, reverse geocoding disabled")
		return &GeocodeService{}
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		logrus.WithError(err).Warn("Failed to initialize maps client")
		return &GeocodeService{}
	}
	return &GeocodeService{client: client}
}

func (s *GeocodeService) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	fallback := fmt.Sprintf("%.5f, %.5f", lat, lng)
	if s.client == nil {
		return fallback, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	results, err := s.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	})
	if err != nil {
		logrus.WithError(err).Debug("Reverse geocode failed")
		return fallback, err
	}
	if len(results) == 0 {
		return fallback, nil
	}
	return results[0].FormattedAddress, nil
}
