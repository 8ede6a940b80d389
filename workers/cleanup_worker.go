package workers

import (
	"context"
	"time"

	"safeher/config"
	"safeher/repositories"

	"github.com/sirupsen/logrus"
)

// CleanupWorker periodically prunes expired history events and stored
// recordings per the retention windows.
type CleanupWorker struct {
	cfg           *config.Config
	eventRepo     *repositories.EventRepository
	recordingRepo *repositories.RecordingRepository

	stopCh chan struct{}
}

func NewCleanupWorker(cfg *config.Config, eventRepo *repositories.EventRepository, recordingRepo *repositories.RecordingRepository) *CleanupWorker {
	return &CleanupWorker{
		cfg:           cfg,
		eventRepo:     eventRepo,
		recordingRepo: recordingRepo,
		stopCh:        make(chan struct{}),
	}
}

func (w *CleanupWorker) Start() {
	logrus.Info("Cleanup worker started")
	go w.run()
}

func (w *CleanupWorker) Stop() {
	close(w.stopCh)
}

func (w *CleanupWorker) run() {
	// First sweep shortly after boot, then every 6 hours.
	timer := time.NewTimer(time.Minute)
	defer timer.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-timer.C:
			w.sweep()
			timer.Reset(6 * time.Hour)
		}
	}
}

func (w *CleanupWorker) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	eventCutoff := time.Now().Add(-w.cfg.EventRetention)
	deleted, err := w.eventRepo.DeleteOlderThan(ctx, eventCutoff)
	if err != nil {
		logrus.WithError(err).Error("Event retention sweep failed")
	} else if deleted > 0 {
		logrus.WithField("deleted", deleted).Info("Pruned expired events")
	}

	recordingCutoff := time.Now().Add(-w.cfg.RecordingRetention)
	deleted, err = w.recordingRepo.DeleteOlderThan(ctx, recordingCutoff)
	if err != nil {
		logrus.WithError(err).Error("Recording retention sweep failed")
	} else if deleted > 0 {
		logrus.WithField("deleted", deleted).Info("Pruned expired recordings")
	}
}
