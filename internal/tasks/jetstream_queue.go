package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
)

const (
	StreamName     = "BACKOFFICE_TASKS"
	subjectPrefix  = "tasks."
	durableWorkers = "backoffice-workers"
)

// JetStreamQueue is a durable queue on a NATS JetStream work-queue stream
type JetStreamQueue struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	logger  *logrus.Entry
	closing chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewJetStreamQueue connects to NATS and makes sure the stream and the worker consumer exist
func NewJetStreamQueue(ctx context.Context, natsURL string, logger *logrus.Entry) (*JetStreamQueue, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("backoffice-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ReconnectBufSize(8*1024*1024),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Infof("[NATS] Reconnected to %s", nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warnf("[NATS] Disconnected: %v", err)
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.Errorf("[NATS] Error: %v", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{subjectPrefix + ">"},
		Retention: jetstream.WorkQueuePolicy,
		MaxAge:    24 * time.Hour * 7,
		Storage:   jetstream.FileStorage,
		Replicas:  1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create %s stream: %w", StreamName, err)
	}

	_, err = js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableWorkers,
		FilterSubject: subjectPrefix + ">",
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       15 * time.Minute,
		MaxDeliver:    3,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create worker consumer: %w", err)
	}

	return &JetStreamQueue{
		nc:      nc,
		js:      js,
		logger:  logger,
		closing: make(chan struct{}),
	}, nil
}

func (q *JetStreamQueue) Publish(ctx context.Context, task *Task) error {
	select {
	case <-q.closing:
		return ErrQueueClosed
	default:
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	if _, err := q.js.Publish(ctx, subjectPrefix+task.Name, data, jetstream.WithMsgID(task.ID)); err != nil {
		return fmt.Errorf("failed to publish task: %w", err)
	}
	return nil
}

func (q *JetStreamQueue) Consume(ctx context.Context, handle func(context.Context, *Task) error) error {
	q.wg.Add(1)
	defer q.wg.Done()

	consumer, err := q.js.Consumer(ctx, StreamName, durableWorkers)
	if err != nil {
		return fmt.Errorf("failed to get worker consumer: %w", err)
	}
	msgs, err := consumer.Messages()
	if err != nil {
		return fmt.Errorf("failed to get messages iterator: %w", err)
	}

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
		case <-q.closing:
		case <-stopped:
		}
		msgs.Stop()
	}()

	for {
		msg, err := msgs.Next()
		if err != nil {
			if errors.Is(err, jetstream.ErrMsgIteratorClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			q.logger.WithError(err).Error("Error getting next task message")
			time.Sleep(time.Second)
			continue
		}

		var task Task
		if err := json.Unmarshal(msg.Data(), &task); err != nil {
			q.logger.WithError(err).WithField("subject", msg.Subject()).Error("Dropping malformed task")
			_ = msg.Term()
			continue
		}

		if err := handle(ctx, &task); err != nil {
			_ = msg.Nak()
		} else {
			_ = msg.Ack()
		}
	}
}

// Close stops the consumers, waits for the tasks they are running and drains the connection
func (q *JetStreamQueue) Close() error {
	q.once.Do(func() { close(q.closing) })
	q.wg.Wait()
	return q.nc.Drain()
}
