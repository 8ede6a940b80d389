package services

import (
	"context"
	"sync"
	"time"

	"safeher/config"
	"safeher/interfaces"
	"safeher/models"
	"safeher/repositories"
	"safeher/utils"

	"github.com/sirupsen/logrus"
)

// RecorderService owns the single exclusive evidence capture session. A
// second Acquire while recording coalesces into the running session and
// returns its handle; triggers never fight over the camera. Automatic
// recordings carry a hard runtime valve so a forgotten session cannot fill
// the disk; manual recordings run until the user stops them.
type RecorderService struct {
	cfg           *config.Config
	recordingRepo *repositories.RecordingRepository
	commander     interfaces.DeviceCommander
	location      interfaces.LocationProvider
	logger        interfaces.EventLogger

	mu        sync.Mutex
	handle    *models.RecordingHandle
	chunks    [][]byte
	mimeType  string
	startPos  *models.Position
	stopTimer *time.Timer
}

func NewRecorderService(
	cfg *config.Config,
	recordingRepo *repositories.RecordingRepository,
	commander interfaces.DeviceCommander,
	location interfaces.LocationProvider,
	logger interfaces.EventLogger,
) *RecorderService {
	return &RecorderService{
		cfg:           cfg,
		recordingRepo: recordingRepo,
		commander:     commander,
		location:      location,
		logger:        logger,
	}
}

func (s *RecorderService) IsRecording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle != nil
}

func (s *RecorderService) Current() *models.RecordingHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return nil
	}
	h := *s.handle
	return &h
}

func (s *RecorderService) Acquire(ctx context.Context, reason string, preferVideo, preferRearCamera bool) (*models.RecordingHandle, error) {
	s.mu.Lock()

	if s.handle != nil {
		h := *s.handle
		s.mu.Unlock()
		logrus.WithFields(logrus.Fields{
			"reason":   reason,
			"existing": h.Reason,
		}).Info("Recording already running, coalescing")
		return &h, nil
	}

	mediaKind := models.MediaAudio
	if preferVideo {
		mediaKind = models.MediaVideo
	}
	handle := &models.RecordingHandle{
		ID:        utils.GenerateRecordingID(),
		Reason:    reason,
		MediaKind: mediaKind,
		StartedAt: time.Now(),
	}
	s.handle = handle
	s.chunks = nil
	s.mimeType = ""
	s.startPos = s.location.LastFix()

	if reason != models.ReasonManual {
		s.stopTimer = time.AfterFunc(s.cfg.RecorderAutoStop, s.autoStop)
	}
	s.mu.Unlock()

	err := s.commander.StartCapture(models.WSCapturePayload{
		SessionID:  handle.ID,
		Reason:     reason,
		Video:      preferVideo,
		RearCamera: preferRearCamera,
	})
	if err != nil {
		s.mu.Lock()
		s.handle = nil
		s.chunks = nil
		if s.stopTimer != nil {
			s.stopTimer.Stop()
			s.stopTimer = nil
		}
		s.mu.Unlock()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"recordingId": handle.ID,
		"reason":      reason,
		"mediaKind":   mediaKind,
	}).Info("Recording started")
	h := *handle
	return &h, nil
}

// IngestChunk appends one captured media chunk from the device.
func (s *RecorderService) IngestChunk(ctx context.Context, data []byte, mimeType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == nil {
		return utils.NewConflictError("no recording in progress")
	}
	s.chunks = append(s.chunks, data)
	if mimeType != "" {
		s.mimeType = mimeType
	}
	return nil
}

func (s *RecorderService) Stop(ctx context.Context) {
	s.mu.Lock()
	handle := s.handle
	if handle == nil {
		s.mu.Unlock()
		return
	}
	chunks := s.chunks
	mimeType := s.mimeType
	startPos := s.startPos
	s.handle = nil
	s.chunks = nil
	s.startPos = nil
	if s.stopTimer != nil {
		s.stopTimer.Stop()
		s.stopTimer = nil
	}
	s.mu.Unlock()

	s.commander.StopCapture()

	size := 0
	for _, chunk := range chunks {
		size += len(chunk)
	}
	payload := make([]byte, 0, size)
	for _, chunk := range chunks {
		payload = append(payload, chunk...)
	}

	if mimeType == "" {
		if handle.MediaKind == models.MediaVideo {
			mimeType = "video/webm"
		} else {
			mimeType = "audio/webm"
		}
	}
	duration := int(time.Since(handle.StartedAt).Seconds())

	recording := &models.Recording{
		ID:            handle.ID,
		Timestamp:     handle.StartedAt,
		Reason:        handle.Reason,
		MediaKind:     handle.MediaKind,
		DurationSec:   duration,
		StartLocation: startPos,
		Filename:      "recording-" + handle.StartedAt.Format("20060102-150405") + ".webm",
		MimeType:      mimeType,
		SizeBytes:     int64(len(payload)),
		Payload:       payload,
	}
	if err := s.recordingRepo.Create(ctx, recording); err != nil {
		logrus.WithError(err).Error("Failed to persist recording")
		return
	}

	s.logger.LogEvent(ctx, models.EventRecordingSaved, models.EventExtra{
		Media: models.EventMedia{
			HasVideo:    handle.MediaKind == models.MediaVideo,
			HasAudio:    true,
			DurationSec: duration,
		},
		Trigger: models.EventTrigger{Method: handle.Reason},
	})
	logrus.WithFields(logrus.Fields{
		"recordingId": handle.ID,
		"durationSec": duration,
		"sizeBytes":   recording.SizeBytes,
	}).Info("Recording saved")
}

func (s *RecorderService) autoStop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	logrus.Warn("Recording hit runtime valve, stopping")
	s.Stop(ctx)
}

func (s *RecorderService) List(ctx context.Context) ([]models.Recording, error) {
	return s.recordingRepo.List(ctx)
}

func (s *RecorderService) Get(ctx context.Context, id string) (*models.Recording, error) {
	return s.recordingRepo.FindByID(ctx, id)
}

func (s *RecorderService) Delete(ctx context.Context, id string) error {
	return s.recordingRepo.Delete(ctx, id)
}
