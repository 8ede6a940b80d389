package services

import (
	"context"
	"strings"
	"sync"

	"safeher/interfaces"
	"safeher/models"
	"safeher/utils"

	"github.com/sirupsen/logrus"
)

var defaultKeywords = []string{
	"help me", "emergency", "call police", "sos",
	"bachao", "madad karo", "chhodo mujhe",
}

// VoiceService matches recognized speech against the trigger keywords. The
// device runs the recognizer and streams transcript batches up; matching is
// case-insensitive substring. Recognizer failures split into permission
// denials, which pause the watcher, and transient errors, which ask the
// device to restart recognition.
type VoiceService struct {
	logger    interfaces.EventLogger
	raiser    interfaces.CandidateRaiser
	commander interfaces.DeviceCommander

	mu       sync.Mutex
	keywords []string
	paused   bool
}

func NewVoiceService(logger interfaces.EventLogger, raiser interfaces.CandidateRaiser, commander interfaces.DeviceCommander) *VoiceService {
	return &VoiceService{
		logger:    logger,
		raiser:    raiser,
		commander: commander,
		keywords:  append([]string(nil), defaultKeywords...),
	}
}

func (s *VoiceService) Keywords() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keywords...)
}

func (s *VoiceService) SetKeywords(keywords []string) {
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	s.mu.Lock()
	if len(cleaned) > 0 {
		s.keywords = cleaned
	}
	s.mu.Unlock()
}

func (s *VoiceService) SetPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
	logrus.WithField("paused", paused).Info("Voice watcher state changed")
}

// IngestTranscript checks one recognized batch for a keyword hit. Returns
// the matched keyword, or empty when nothing matched or the watcher is
// paused.
func (s *VoiceService) IngestTranscript(ctx context.Context, batch models.TranscriptBatch) string {
	s.mu.Lock()
	paused := s.paused
	keywords := s.keywords
	s.mu.Unlock()

	if paused {
		return ""
	}

	transcript := strings.ToLower(batch.Transcript)
	for _, kw := range keywords {
		if strings.Contains(transcript, kw) {
			trigger := models.EventTrigger{
				Method:  models.SourceVoice,
				Keyword: kw,
			}
			s.logger.LogEvent(ctx, models.EventVoiceAlert, models.EventExtra{Trigger: trigger})
			logrus.WithField("keyword", kw).Warn("Voice trigger keyword detected")

			s.raiser.RaiseCandidate(ctx, models.SourceVoice, trigger)
			return kw
		}
	}
	return ""
}

// HandleRecognizerError applies the recovery policy for a device-reported
// recognizer failure.
func (s *VoiceService) HandleRecognizerError(ctx context.Context, report models.RecognizerErrorReport) error {
	switch report.Code {
	case "not-allowed", "service-not-allowed":
		s.SetPaused(true)
		s.commander.Toast("Microphone access denied, voice detection disabled", "error")
		return utils.NewPermissionDeniedError("microphone access denied")
	case "no-speech", "aborted", "network":
		logrus.WithField("code", report.Code).Debug("Recognizer restart requested")
		s.commander.RestartRecognizer()
		return nil
	default:
		logrus.WithField("code", report.Code).Warn("Unknown recognizer error")
		s.commander.RestartRecognizer()
		return nil
	}
}
