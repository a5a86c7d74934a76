// Package tasks runs units of background work (e-mail sends, imports) from a queue.
package tasks

import (
	"encoding/json"
	"errors"
	"time"
)

// Task names
const (
	TaskSendEmail = "send_email"
	TaskDoImport  = "do_import"
)

// ErrQueueClosed is returned when publishing to a closed queue
var ErrQueueClosed = errors.New("task queue closed")

// Task is one unit of work on the queue
type Task struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

// SendEmailPayload is the payload of a send_email task
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ImportPayload is the payload of a do_import task; an empty path means the configured file
type ImportPayload struct {
	FilePath string `json:"filePath,omitempty"`
}
