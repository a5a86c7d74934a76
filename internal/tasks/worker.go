package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"

	"github.com/sirupsen/logrus"
)

// HandlerFunc runs one task and returns its result message
type HandlerFunc func(ctx context.Context, task *Task) (string, error)

// Worker runs a pool of goroutines consuming the task queue
type Worker struct {
	queue       Queue
	results     repository.ResultStore
	handlers    map[string]HandlerFunc
	concurrency int
	logger      *logrus.Entry

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewWorker creates a worker pool of the given size
func NewWorker(queue Queue, results repository.ResultStore, concurrency int, logger *logrus.Entry) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		queue:       queue,
		results:     results,
		handlers:    make(map[string]HandlerFunc),
		concurrency: concurrency,
		logger:      logger,
	}
}

// Register binds a handler to a task name
func (w *Worker) Register(name string, handler HandlerFunc) {
	w.handlers[name] = handler
}

// Start launches the worker goroutines
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running = true

	ctx, w.cancel = context.WithCancel(ctx)
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			if err := w.queue.Consume(ctx, w.process); err != nil && ctx.Err() == nil {
				w.logger.WithError(err).WithField("worker", id).Error("Task consumer stopped")
			}
		}(i)
	}

	w.logger.WithField("concurrency", w.concurrency).Info("Task worker started")
}

// Stop closes the queue and waits for running tasks to finish
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	if err := w.queue.Close(); err != nil {
		w.logger.WithError(err).Warn("Failed to close task queue")
	}
	w.wg.Wait()
	w.cancel()

	w.logger.Info("Task worker stopped")
}

func (w *Worker) process(ctx context.Context, task *Task) (err error) {
	log := w.logger.WithFields(logrus.Fields{
		"task_id": task.ID,
		"task":    task.Name,
	})

	result := &models.TaskResult{
		ID:         task.ID,
		Name:       task.Name,
		EnqueuedAt: task.EnqueuedAt,
	}

	handler, ok := w.handlers[task.Name]
	if !ok {
		result.Status = models.TaskFailure
		result.Error = fmt.Sprintf("no handler registered for task %q", task.Name)
		w.save(ctx, result, log)
		log.Error(result.Error)
		return nil
	}

	started := time.Now().UTC()
	result.Status = models.TaskStarted
	result.StartedAt = &started
	w.save(ctx, result, log)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
		finished := time.Now().UTC()
		result.FinishedAt = &finished
		if err != nil {
			result.Status = models.TaskFailure
			result.Error = err.Error()
			log.WithError(err).Error("Task failed")
		} else {
			result.Status = models.TaskSuccess
			log.WithField("duration", finished.Sub(started).String()).Info("Task completed")
		}
		w.save(ctx, result, log)
	}()

	result.Result, err = handler(ctx, task)
	return err
}

func (w *Worker) save(ctx context.Context, result *models.TaskResult, log *logrus.Entry) {
	if err := w.results.Save(ctx, result); err != nil {
		log.WithError(err).Warn("Failed to store task result")
	}
}
