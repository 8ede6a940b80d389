package services

import (
	"context"

	"safeher/config"
	"safeher/models"
	"safeher/utils"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSService delivers alert texts through Twilio. Unconfigured credentials
// make the sender report itself unusable rather than failing mid-dispatch.
type SMSService struct {
	client     *twilio.RestClient
	fromNumber string
}

func NewSMSService(cfg *config.Config) *SMSService {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
		logrus.Info("Twilio not configured, SMS sender disabled")
		return &SMSService{}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &SMSService{
		client:     client,
		fromNumber: cfg.TwilioPhoneNumber,
	}
}

func (s *SMSService) Name() string {
	return "sms"
}

func (s *SMSService) LiveCapable() bool {
	return true
}

func (s *SMSService) CanSend(contact models.Contact) bool {
	return s.client != nil && contact.Phone != ""
}

func (s *SMSService) Send(ctx context.Context, contact models.Contact, subject, body string) error {
	if s.client == nil {
		return utils.NewTransportError("sms sender not configured", nil)
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(utils.NormalizePhoneNumber(contact.Phone))
	params.SetFrom(s.fromNumber)
	params.SetBody(body)

	_, err := s.client.Api.CreateMessage(params)
	if err != nil {
		logrus.WithError(err).WithField("contact", contact.Name).Error("Failed to send SMS")
		return utils.NewTransportError("failed to send SMS", err)
	}

	logrus.WithField("contact", contact.Name).Info("SMS sent")
	return nil
}
