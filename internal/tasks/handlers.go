package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"backoffice-service/internal/services"
)

// SendEmailHandler delivers a send_email task through the notifier
func SendEmailHandler(notifier *services.NotificationService) HandlerFunc {
	return func(ctx context.Context, task *Task) (string, error) {
		var p SendEmailPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return "", fmt.Errorf("invalid %s payload: %w", TaskSendEmail, err)
		}
		return notifier.SendEmail(ctx, p.To, p.Subject, p.Body), nil
	}
}

// ImportHandler runs a do_import task and returns the import summary message
func ImportHandler(importer *services.ImportService) HandlerFunc {
	return func(ctx context.Context, task *Task) (string, error) {
		var p ImportPayload
		if len(task.Payload) > 0 {
			if err := json.Unmarshal(task.Payload, &p); err != nil {
				return "", fmt.Errorf("invalid %s payload: %w", TaskDoImport, err)
			}
		}
		return importer.ImportFrom(ctx, p.FilePath).Message, nil
	}
}

// RegisterHandlers binds the service's task handlers to the worker
func RegisterHandlers(w *Worker, notifier *services.NotificationService, importer *services.ImportService) {
	w.Register(TaskSendEmail, SendEmailHandler(notifier))
	w.Register(TaskDoImport, ImportHandler(importer))
}
