package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// NotificationClient delivers e-mail through the notification-service API
type NotificationClient struct {
	baseURL    string
	httpClient *http.Client
}

// notificationRequest is the payload sent to notification-service API
type notificationRequest struct {
	Channel        string `json:"channel"`
	RecipientEmail string `json:"recipientEmail"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}

// NewNotificationClient creates a new notification client
func NewNotificationClient(baseURL string) *NotificationClient {
	return &NotificationClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *NotificationClient) Send(ctx context.Context, msg *EmailMessage) error {
	body, err := json.Marshal(notificationRequest{
		Channel:        "EMAIL",
		RecipientEmail: msg.To,
		Subject:        msg.Subject,
		Body:           msg.Body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/notifications/send", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Internal-Service", "backoffice-service")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notification service returned status %d", resp.StatusCode)
	}

	return nil
}
