package services

import (
	"context"
	"errors"
	"testing"

	"backoffice-service/internal/clients"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of EmailSender
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, msg *clients.EmailMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func TestSendEmail_Success(t *testing.T) {
	sender := &MockEmailSender{}
	sender.On("Send", mock.Anything, &clients.EmailMessage{To: "a@x.com", Subject: "Hi", Body: "Body"}).Return(nil)
	notifier := NewNotificationService(sender, 10, testLogger())

	result := notifier.SendEmail(context.Background(), "a@x.com", "Hi", "Body")

	assert.Equal(t, "Email sent successfully. Result: 1", result)
	sender.AssertExpectations(t)
}

func TestSendEmail_TransportFailureIsNotPropagated(t *testing.T) {
	sender := &MockEmailSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	notifier := NewNotificationService(sender, 0, testLogger())

	result := notifier.SendEmail(context.Background(), "a@x.com", "Hi", "Body")

	assert.Equal(t, "Failed to send email: connection refused", result)
}

func TestSendEmail_RateLimitedCancelledContext(t *testing.T) {
	sender := &MockEmailSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(nil)
	notifier := NewNotificationService(sender, 0.001, testLogger())

	assert.Equal(t, "Email sent successfully. Result: 1", notifier.SendEmail(context.Background(), "a@x.com", "1", ""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := notifier.SendEmail(ctx, "a@x.com", "2", "")

	assert.Contains(t, result, "Failed to send email")
	sender.AssertNumberOfCalls(t, "Send", 1)
}
