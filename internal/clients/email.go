// Package clients provides the outbound e-mail transports.
package clients

import (
	"context"
	"fmt"

	"backoffice-service/internal/config"

	"github.com/sirupsen/logrus"
)

// Email backends
const (
	BackendSMTP         = "smtp"
	BackendNotification = "notification-service"
	BackendConsole      = "console"
)

// EmailMessage is a plain-text e-mail to one recipient
type EmailMessage struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers e-mail through one transport
type Sender interface {
	Send(ctx context.Context, msg *EmailMessage) error
}

// NewSender builds the transport selected by cfg.Backend
func NewSender(cfg config.EmailConfig, logger *logrus.Entry) (Sender, error) {
	switch cfg.Backend {
	case BackendSMTP:
		return NewSMTPSender(cfg)
	case BackendNotification:
		return NewNotificationClient(cfg.NotificationServiceURL), nil
	case BackendConsole, "":
		return NewConsoleSender(cfg.From, logger), nil
	default:
		return nil, fmt.Errorf("unknown email backend %q", cfg.Backend)
	}
}

// ConsoleSender writes messages to the log instead of delivering them
type ConsoleSender struct {
	from   string
	logger *logrus.Entry
}

// NewConsoleSender creates a console sender
func NewConsoleSender(from string, logger *logrus.Entry) *ConsoleSender {
	return &ConsoleSender{from: from, logger: logger}
}

func (s *ConsoleSender) Send(ctx context.Context, msg *EmailMessage) error {
	s.logger.WithFields(logrus.Fields{
		"from":    s.from,
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info(msg.Body)
	return nil
}
