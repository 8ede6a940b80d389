package services

import (
	"context"

	"safeher/config"
	"safeher/models"
	"safeher/utils"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// PushService delivers alerts to a contact's paired device through FCM.
// Contacts without a registered device token are skipped by CanSend.
type PushService struct {
	client *messaging.Client
}

func NewPushService(cfg *config.Config) *PushService {
	if cfg.FirebaseCredentials == "" {
		logrus.Info("Firebase not configured, push sender disabled")
		return &PushService{}
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.FirebaseCredentials))
	if err != nil {
		logrus.WithError(err).Warn("Failed to initialize Firebase app")
		return &PushService{}
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Failed to initialize FCM client")
		return &PushService{}
	}
	return &PushService{client: client}
}

func (s *PushService) Name() string {
	return "push"
}

func (s *PushService) LiveCapable() bool {
	return true
}

func (s *PushService) CanSend(contact models.Contact) bool {
	return s.client != nil && contact.DeviceToken != ""
}

func (s *PushService) Send(ctx context.Context, contact models.Contact, subject, body string) error {
	if s.client == nil {
		return utils.NewTransportError("push sender not configured", nil)
	}

	message := &messaging.Message{
		Token: contact.DeviceToken,
		Notification: &messaging.Notification{
			Title: subject,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	_, err := s.client.Send(ctx, message)
	if err != nil {
		logrus.WithError(err).WithField("contact", contact.Name).Error("Failed to send push")
		return utils.NewTransportError("failed to send push notification", err)
	}

	logrus.WithField("contact", contact.Name).Info("Push notification sent")
	return nil
}
