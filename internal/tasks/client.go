package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client publishes tasks and reads their results
type Client struct {
	queue   Queue
	results repository.ResultStore
	logger  *logrus.Entry
}

// NewClient creates a task client
func NewClient(queue Queue, results repository.ResultStore, logger *logrus.Entry) *Client {
	return &Client{queue: queue, results: results, logger: logger}
}

// Enqueue publishes a task and returns its id without waiting for it to run
func (c *Client) Enqueue(ctx context.Context, name string, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s payload: %w", name, err)
	}

	task := &Task{
		ID:         uuid.NewString(),
		Name:       name,
		Payload:    data,
		EnqueuedAt: time.Now().UTC(),
	}

	if err := c.results.Save(ctx, &models.TaskResult{
		ID:         task.ID,
		Name:       name,
		Status:     models.TaskPending,
		EnqueuedAt: task.EnqueuedAt,
	}); err != nil {
		c.logger.WithError(err).WithField("task_id", task.ID).Warn("Failed to store pending task result")
	}

	if err := c.queue.Publish(ctx, task); err != nil {
		return "", err
	}

	c.logger.WithFields(logrus.Fields{
		"task_id": task.ID,
		"task":    name,
	}).Debug("Task enqueued")
	return task.ID, nil
}

// EnqueueEmail queues a send_email task
func (c *Client) EnqueueEmail(ctx context.Context, to, subject, body string) (string, error) {
	return c.Enqueue(ctx, TaskSendEmail, SendEmailPayload{To: to, Subject: subject, Body: body})
}

// EnqueueImport queues a do_import task
func (c *Client) EnqueueImport(ctx context.Context, filePath string) (string, error) {
	return c.Enqueue(ctx, TaskDoImport, ImportPayload{FilePath: filePath})
}

// Result returns the latest known state of a task
func (c *Client) Result(ctx context.Context, id string) (*models.TaskResult, error) {
	return c.results.Get(ctx, id)
}
