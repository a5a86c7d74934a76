package services

import (
	"context"
	"fmt"

	"backoffice-service/internal/clients"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// EmailSender delivers one message synchronously
type EmailSender interface {
	Send(ctx context.Context, msg *clients.EmailMessage) error
}

// NotificationService sends e-mails. Delivery failures are reported in the
// returned message and never returned as errors.
type NotificationService struct {
	sender  EmailSender
	limiter *rate.Limiter
	logger  *logrus.Entry
}

// NewNotificationService creates a notifier allowing perSecond sends per second; zero or less disables the limit
func NewNotificationService(sender EmailSender, perSecond float64, logger *logrus.Entry) *NotificationService {
	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		if perSecond > 1 {
			burst = int(perSecond)
		}
	}
	return &NotificationService{
		sender:  sender,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// SendEmail delivers a message and returns a result description
func (s *NotificationService) SendEmail(ctx context.Context, to, subject, body string) string {
	log := s.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	})

	if err := s.limiter.Wait(ctx); err != nil {
		log.WithError(err).Error("Email not sent: rate limiter wait aborted")
		return fmt.Sprintf("Failed to send email: %v", err)
	}

	if err := s.sender.Send(ctx, &clients.EmailMessage{To: to, Subject: subject, Body: body}); err != nil {
		log.WithError(err).Error("Failed to send email")
		return fmt.Sprintf("Failed to send email: %v", err)
	}

	log.Info("Email sent")
	return "Email sent successfully. Result: 1"
}
