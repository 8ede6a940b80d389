package services

import (
	"context"
	"fmt"

	"safeher/interfaces"
	"safeher/models"
	"safeher/utils"

	"github.com/sirupsen/logrus"
)

// DispatchService fans an emergency out to the contact list. Channel
// layers run in priority order and each layer is tried only when the one
// before it was inapplicable or failed for every contact: device share
// sheet, provider sends per contact, composed SMS pushed to the device,
// clipboard copy. Per-contact failures are counted, never raised; the
// dispatcher always returns a result.
type DispatchService struct {
	contacts    interfaces.ContactSource
	commander   interfaces.DeviceCommander
	senders     []interfaces.ContactSender
	location    interfaces.LocationProvider
	logger      interfaces.EventLogger
	broadcaster interfaces.LiveBroadcaster
}

func NewDispatchService(
	contacts interfaces.ContactSource,
	commander interfaces.DeviceCommander,
	senders []interfaces.ContactSender,
	location interfaces.LocationProvider,
	logger interfaces.EventLogger,
	broadcaster interfaces.LiveBroadcaster,
) *DispatchService {
	return &DispatchService{
		contacts:    contacts,
		commander:   commander,
		senders:     senders,
		location:    location,
		logger:      logger,
		broadcaster: broadcaster,
	}
}

var sourceMessages = map[string]string{
	models.SourceManual:    "EMERGENCY! I need help immediately.",
	models.SourceMotion:    "EMERGENCY! Violent movement was detected on my phone.",
	models.SourceVoice:     "EMERGENCY! A voice distress signal was detected.",
	models.SourceDeviation: "ALERT! I have left my planned route.",
	models.SourceCheckIn:   "ALERT! I missed my safety check-in.",
}

func composeAlertBody(source string, loc *models.Position) string {
	msg, ok := sourceMessages[source]
	if !ok {
		msg = sourceMessages[models.SourceManual]
	}
	if loc == nil {
		return msg + " My location is currently unavailable."
	}
	return fmt.Sprintf("%s My location: %s (accuracy %.0fm)",
		msg, utils.MapsLink(loc.Latitude, loc.Longitude), loc.Accuracy)
}

func (s *DispatchService) Notify(ctx context.Context, source string, loc *models.Position) models.DispatchResult {
	if loc == nil {
		loc = s.location.GetOnce(ctx, ProfilePatient)
	}

	contacts, err := s.contacts.ListContacts(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to load contacts for dispatch")
		contacts = nil
	}
	if len(contacts) == 0 {
		s.commander.Toast("No emergency contacts configured", "warning")
		logrus.Warn("Dispatch requested with no contacts")
		return models.DispatchResult{NoContacts: true}
	}

	body := composeAlertBody(source, loc)
	result := s.dispatch(ctx, contacts, body)

	if result.Succeeded > 0 {
		var eventLoc *models.EventLocation
		if loc != nil {
			eventLoc = &models.EventLocation{
				Latitude:  loc.Latitude,
				Longitude: loc.Longitude,
				Accuracy:  loc.Accuracy,
			}
		}
		s.logger.LogEvent(ctx, models.EventContactAlerted, models.EventExtra{
			Location: eventLoc,
			Trigger:  models.EventTrigger{Method: source},
			Contacts: models.EventContacts{Alerted: true, AlertedCount: result.Succeeded},
		})
	}

	if result.LiveUpdates {
		s.startLiveUpdates(source)
	}
	return result
}

func (s *DispatchService) dispatch(ctx context.Context, contacts []models.Contact, body string) models.DispatchResult {
	total := len(contacts)

	// Layer 1: the device's native share sheet reaches whatever messenger
	// the user actually has, and needs no provider credentials.
	if s.commander.Connected() {
		if err := s.commander.ShareMessage(ctx, "Emergency Alert", body); err == nil {
			logrus.Info("Alert delivered via device share sheet")
			return models.DispatchResult{Attempted: total, Succeeded: total}
		} else {
			logrus.WithError(err).Debug("Share sheet layer failed")
		}
	}

	// Layer 2: provider sends. Each contact walks the sender chain in
	// order and stops at the first channel that delivered; a failed send
	// falls through to the contact's next capable channel.
	succeeded := 0
	live := false
	for _, contact := range contacts {
		for _, sender := range s.senders {
			if !sender.CanSend(contact) {
				continue
			}
			if err := sender.Send(ctx, contact, "Emergency Alert", body); err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"contact": contact.Name,
					"channel": sender.Name(),
				}).Warn("Provider send failed")
				continue
			}
			succeeded++
			if sender.LiveCapable() {
				live = true
			}
			break
		}
	}
	if succeeded > 0 {
		return models.DispatchResult{
			Attempted:   total,
			Succeeded:   succeeded,
			Failed:      total - succeeded,
			LiveUpdates: live,
		}
	}

	// Layer 3: pre-filled SMS composer on the device.
	phones := make([]string, 0, total)
	for _, contact := range contacts {
		phones = append(phones, contact.Phone)
	}
	if err := s.commander.ComposeSMS(phones, body); err == nil {
		logrus.Info("Alert handed to device SMS composer")
		return models.DispatchResult{Attempted: total, Succeeded: total}
	}

	// Layer 4: clipboard, so the user can paste the alert anywhere.
	if err := s.commander.CopyToClipboard(ctx, body); err == nil {
		s.commander.Toast("Alert message copied to clipboard", "warning")
		return models.DispatchResult{Attempted: total, Succeeded: total}
	}

	logrus.Error("All dispatch layers failed")
	return models.DispatchResult{Attempted: total, Failed: total}
}

// startLiveUpdates begins the periodic location re-send to live-capable
// channels after a successful alert.
func (s *DispatchService) startLiveUpdates(source string) {
	s.broadcaster.Start(func(ctx context.Context) {
		loc := s.location.GetOnce(ctx, ProfileQuick)
		if loc == nil {
			return
		}
		contacts, err := s.contacts.ListContacts(ctx)
		if err != nil || len(contacts) == 0 {
			return
		}
		body := fmt.Sprintf("Live location update: %s (accuracy %.0fm)",
			utils.MapsLink(loc.Latitude, loc.Longitude), loc.Accuracy)
		for _, contact := range contacts {
			for _, sender := range s.senders {
				if !sender.LiveCapable() || !sender.CanSend(contact) {
					continue
				}
				if err := sender.Send(ctx, contact, "Live Location Update", body); err != nil {
					logrus.WithError(err).WithField("contact", contact.Name).Debug("Live update send failed")
					continue
				}
				break
			}
		}
	})
}

func (s *DispatchService) CancelLiveUpdates() {
	s.broadcaster.Stop()
}

// ShareLocation is the one-shot "I'm here" share outside any emergency.
func (s *DispatchService) ShareLocation(ctx context.Context, channel string) error {
	loc := s.location.GetOnce(ctx, ProfileQuick)
	if loc == nil {
		return utils.NewTimeoutError("no location fix available")
	}
	body := "I'm here: " + utils.MapsLink(loc.Latitude, loc.Longitude)

	var err error
	switch channel {
	case "clipboard":
		err = s.commander.CopyToClipboard(ctx, body)
	case "sms":
		contacts, lerr := s.contacts.ListContacts(ctx)
		if lerr != nil || len(contacts) == 0 {
			return utils.NewConflictError("no contacts to text")
		}
		phones := make([]string, 0, len(contacts))
		for _, contact := range contacts {
			phones = append(phones, contact.Phone)
		}
		err = s.commander.ComposeSMS(phones, body)
	case "email":
		contacts, lerr := s.contacts.ListContacts(ctx)
		if lerr != nil {
			return lerr
		}
		sent := false
		for _, contact := range contacts {
			for _, sender := range s.senders {
				if sender.Name() != "email" || !sender.CanSend(contact) {
					continue
				}
				if serr := sender.Send(ctx, contact, "My Location", body); serr == nil {
					sent = true
				}
			}
		}
		if !sent {
			return utils.NewTransportError("no email delivered", nil)
		}
	default:
		err = s.commander.ShareMessage(ctx, "My Location", body)
	}
	if err != nil {
		return err
	}

	s.logger.LogEvent(ctx, models.EventLocationShared, models.EventExtra{
		Location: &models.EventLocation{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Accuracy:  loc.Accuracy,
		},
		Trigger: models.EventTrigger{Method: channel},
	})
	return nil
}
