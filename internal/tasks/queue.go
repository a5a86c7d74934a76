package tasks

import (
	"context"
	"sync"
)

// Queue carries tasks from publishers to workers
type Queue interface {
	Publish(ctx context.Context, task *Task) error
	// Consume hands tasks to handle until ctx is done or the queue is closed
	Consume(ctx context.Context, handle func(context.Context, *Task) error) error
	Close() error
}

// ChannelQueue is an in-process queue backed by a buffered channel. Tasks
// still buffered when the queue is closed are drained by the consumers.
type ChannelQueue struct {
	ch        chan *Task
	done      chan struct{}
	closeOnce sync.Once
}

// NewChannelQueue creates an in-process queue
func NewChannelQueue(buffer int) *ChannelQueue {
	if buffer <= 0 {
		buffer = 100
	}
	return &ChannelQueue{
		ch:   make(chan *Task, buffer),
		done: make(chan struct{}),
	}
}

func (q *ChannelQueue) Publish(ctx context.Context, task *Task) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.ch <- task:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ChannelQueue) Consume(ctx context.Context, handle func(context.Context, *Task) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case task := <-q.ch:
			_ = handle(ctx, task)
		case <-q.done:
			for {
				select {
				case task := <-q.ch:
					_ = handle(ctx, task)
				default:
					return nil
				}
			}
		}
	}
}

func (q *ChannelQueue) Close() error {
	q.closeOnce.Do(func() { close(q.done) })
	return nil
}
