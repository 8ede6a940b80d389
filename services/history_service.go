package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"safeher/interfaces"
	"safeher/models"
	"safeher/repositories"
	"safeher/utils"

	"github.com/sirupsen/logrus"
)

// HistoryService owns the append-only safety event log. LogEvent enriches
// each event with the latest fix, a reverse-geocoded address and a device
// snapshot, then persists and broadcasts it. Enrichment and persistence
// failures are logged and swallowed: a dead database must never break the
// emergency path, callers still get the in-memory event back.
type HistoryService struct {
	eventRepo   *repositories.EventRepository
	location    interfaces.LocationProvider
	geocoder    interfaces.Geocoder
	status      interfaces.DeviceStatusSource
	broadcaster interfaces.EventBroadcaster
}

func NewHistoryService(
	eventRepo *repositories.EventRepository,
	location interfaces.LocationProvider,
	geocoder interfaces.Geocoder,
	status interfaces.DeviceStatusSource,
	broadcaster interfaces.EventBroadcaster,
) *HistoryService {
	return &HistoryService{
		eventRepo:   eventRepo,
		location:    location,
		geocoder:    geocoder,
		status:      status,
		broadcaster: broadcaster,
	}
}

func (s *HistoryService) LogEvent(ctx context.Context, eventType string, extra models.EventExtra) *models.SafetyEvent {
	meta := models.MetaForEvent(eventType)

	event := &models.SafetyEvent{
		ID:        utils.GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Title:     meta.Title,
		Severity:  meta.Severity,
		Location:  extra.Location,
		Trigger:   extra.Trigger,
		Media:     extra.Media,
		Contacts:  extra.Contacts,
		Journey:   extra.Journey,
	}

	if event.Location == nil && s.location != nil {
		if fix := s.location.GetOnce(ctx, ProfileQuick); fix != nil {
			event.Location = &models.EventLocation{
				Latitude:  fix.Latitude,
				Longitude: fix.Longitude,
				Accuracy:  fix.Accuracy,
			}
		}
	}
	if event.Location != nil {
		event.Location.MapsLink = utils.MapsLink(event.Location.Latitude, event.Location.Longitude)
		if event.Location.Address == "" && s.geocoder != nil {
			if address, err := s.geocoder.ReverseGeocode(ctx, event.Location.Latitude, event.Location.Longitude); err == nil {
				event.Location.Address = address
			}
		}
	}

	if s.status != nil {
		snapshot := s.status.DeviceStatus()
		event.System = models.EventSystem{
			BatteryLevel: snapshot.BatteryLevel,
			NetworkType:  snapshot.NetworkType,
			AppVersion:   snapshot.AppVersion,
		}
	}

	if s.eventRepo != nil {
		if err := s.eventRepo.Create(ctx, event); err != nil {
			logrus.WithError(err).WithField("type", eventType).Error("Failed to persist event")
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastEvent(event)
	}

	logrus.WithFields(logrus.Fields{
		"type":     eventType,
		"severity": event.Severity,
		"eventId":  event.ID,
	}).Info("Safety event logged")

	return event
}

func (s *HistoryService) Query(ctx context.Context, query models.EventQuery) ([]models.SafetyEvent, error) {
	return s.eventRepo.Query(ctx, query)
}

func (s *HistoryService) GetEvent(ctx context.Context, id string) (*models.SafetyEvent, error) {
	return s.eventRepo.FindByID(ctx, id)
}

func (s *HistoryService) ResolveEvent(ctx context.Context, id, note string) (*models.SafetyEvent, error) {
	return s.eventRepo.Resolve(ctx, id, note)
}

func (s *HistoryService) Stats(ctx context.Context) (*models.EventStats, error) {
	return s.eventRepo.Stats(ctx)
}

func (s *HistoryService) DeleteEvent(ctx context.Context, id string) error {
	return s.eventRepo.Delete(ctx, id)
}

func (s *HistoryService) ClearAll(ctx context.Context) error {
	return s.eventRepo.DeleteAll(ctx)
}

// ExportCSV renders the filtered event log with a stable column set.
func (s *HistoryService) ExportCSV(ctx context.Context, query models.EventQuery) ([]byte, error) {
	events, err := s.eventRepo.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return renderEventsCSV(events)
}

func renderEventsCSV(events []models.SafetyEvent) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"Timestamp", "Type", "Title", "Severity", "Latitude", "Longitude", "Address"}
	if err := writer.Write(header); err != nil {
		return nil, utils.NewStorageError("failed to write export", err)
	}

	for _, event := range events {
		lat, lng, address := "", "", ""
		if event.Location != nil {
			lat = strconv.FormatFloat(event.Location.Latitude, 'f', 6, 64)
			lng = strconv.FormatFloat(event.Location.Longitude, 'f', 6, 64)
			address = event.Location.Address
		}
		row := []string{
			event.Timestamp.Format(time.RFC3339),
			event.Type,
			event.Title,
			event.Severity,
			lat,
			lng,
			address,
		}
		if err := writer.Write(row); err != nil {
			return nil, utils.NewStorageError("failed to write export", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, utils.NewStorageError("failed to write export", err)
	}
	return buf.Bytes(), nil
}

// ExportFilename names a download after the export moment.
func ExportFilename() string {
	return fmt.Sprintf("safety-history-%s.csv", time.Now().Format("2006-01-02"))
}
