package services

import (
	"context"
	"fmt"
	"net/smtp"

	"safeher/config"
	"safeher/models"
	"safeher/utils"

	"github.com/sirupsen/logrus"
)

// EmailService delivers alert emails over SMTP. The mock provider logs
// instead of sending, for development without a mail account.
type EmailService struct {
	provider string
	host     string
	port     string
	username string
	password string
	from     string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		provider: cfg.EmailProvider,
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}
}

func (s *EmailService) Name() string {
	return "email"
}

func (s *EmailService) LiveCapable() bool {
	return true
}

func (s *EmailService) CanSend(contact models.Contact) bool {
	if contact.Email == "" {
		return false
	}
	if s.provider == "mock" {
		return true
	}
	return s.username != ""
}

func (s *EmailService) Send(ctx context.Context, contact models.Contact, subject, body string) error {
	if s.provider == "mock" {
		logrus.WithFields(logrus.Fields{
			"to":      contact.Email,
			"subject": subject,
		}).Info("Mock email sent")
		return nil
	}

	message := s.buildMessage(contact.Email, subject, body)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	if err := smtp.SendMail(addr, auth, s.from, []string{contact.Email}, []byte(message)); err != nil {
		logrus.WithError(err).WithField("contact", contact.Name).Error("Failed to send email")
		return utils.NewTransportError("failed to send email", err)
	}

	logrus.WithField("contact", contact.Name).Info("Email sent")
	return nil
}

func (s *EmailService) buildMessage(to, subject, body string) string {
	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n",
		s.from, to, subject, body)
}
