package main

import (
	"context"
	"fmt"
	"time"

	"backoffice-service/internal/clients"
	"backoffice-service/internal/config"
	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/schema"
	"backoffice-service/internal/services"
	"backoffice-service/internal/tasks"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// app holds the wired components shared by the commands
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	db     *gorm.DB
	redis  *redis.Client

	queue      tasks.Queue
	localQueue bool
	results    repository.ResultStore
	client     *tasks.Client
	worker     *tasks.Worker

	runs     *repository.ImportRunRepository
	notifier *services.NotificationService
	importer *services.ImportService
}

func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*app, error) {
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, db: db}

	a.results = a.initResultStore(ctx)
	a.queue, a.localQueue = a.initQueue(ctx)
	a.client = tasks.NewClient(a.queue, a.results, logger.WithField("component", "task_client"))

	sender, err := clients.NewSender(cfg.Email, logger.WithField("component", "email"))
	if err != nil {
		return nil, err
	}
	a.notifier = services.NewNotificationService(sender, cfg.Email.RateLimit, logger.WithField("component", "notifier"))

	a.runs = repository.NewImportRunRepository(db)
	a.importer = services.NewImportService(
		schema.Marketplace(),
		repository.NewEntityRepository(db),
		a.runs,
		a.client,
		cfg.Import,
		logger.WithField("component", "importer"),
	)

	a.worker = tasks.NewWorker(a.queue, a.results, cfg.WorkerConcurrency, logger.WithField("component", "worker"))
	tasks.RegisterHandlers(a.worker, a.notifier, a.importer)

	return a, nil
}

// initResultStore uses Redis when configured and reachable, process memory otherwise
func (a *app) initResultStore(ctx context.Context) repository.ResultStore {
	if a.cfg.RedisURL == "" {
		a.logger.Info("REDIS_URL not configured, task results kept in memory")
		return repository.NewMemoryResultStore(a.cfg.TaskResultTTL)
	}

	opt, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		a.logger.Warnf("Failed to parse Redis URL: %v. Task results kept in memory", err)
		return repository.NewMemoryResultStore(a.cfg.TaskResultTTL)
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		a.logger.Warnf("Failed to connect to Redis: %v. Task results kept in memory", err)
		_ = client.Close()
		return repository.NewMemoryResultStore(a.cfg.TaskResultTTL)
	}

	a.redis = client
	a.logger.Info("Connected to Redis for task results")
	return repository.NewRedisResultStore(client, a.cfg.TaskResultTTL)
}

// initQueue uses JetStream when NATS_URL is set and reachable, an in-process channel otherwise
func (a *app) initQueue(ctx context.Context) (tasks.Queue, bool) {
	if a.cfg.NATSURL == "" {
		a.logger.Info("NATS_URL not configured, using in-process task queue")
		return tasks.NewChannelQueue(100), true
	}

	setupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	queue, err := tasks.NewJetStreamQueue(setupCtx, a.cfg.NATSURL, a.logger.WithField("component", "task_queue"))
	if err != nil {
		a.logger.Warnf("Failed to initialize JetStream task queue: %v. Using in-process queue", err)
		return tasks.NewChannelQueue(100), true
	}

	a.logger.Infof("Task queue on JetStream stream %s", tasks.StreamName)
	return queue, false
}

func (a *app) migrate() error {
	a.logger.Info("Running database migrations...")
	if err := a.db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	a.logger.Info("Database migrations completed")
	return nil
}

// close stops the worker (draining the queue) and releases connections
func (a *app) close() {
	a.worker.Stop()
	_ = a.queue.Close()
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
