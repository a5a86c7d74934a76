package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the service
type Config struct {
	Environment string
	Port        string
	LogLevel    string

	// Database
	DBDriver    string
	DatabaseURL string

	// Task queue and result backend
	NATSURL           string
	RedisURL          string
	WorkerConcurrency int
	TaskResultTTL     time.Duration

	Import ImportConfig
	Email  EmailConfig
}

// ImportConfig configures the bulk importer
type ImportConfig struct {
	FilePath   string
	AdminEmail string
	ReportPath string
	// Kinds whose write-time uniqueness violation is treated as an already imported record
	UniqueFallbackKinds []string
}

// EmailConfig configures outbound e-mail delivery
type EmailConfig struct {
	Backend                string // smtp, notification-service, console
	From                   string
	SMTPHost               string
	SMTPPort               int
	SMTPUser               string
	SMTPPassword           string
	SMTPUseTLS             bool // mandatory STARTTLS
	SMTPUseSSL             bool // implicit TLS
	NotificationServiceURL string
	RateLimit              float64 // messages per second
}

// Load loads configuration from environment variables
func Load() *Config {
	env := getEnv("ENVIRONMENT", "development")
	adminEmail := getEnv("SERVER_EMAIL", "admin@example.com")

	defaultLevel := "debug"
	if env == "production" {
		defaultLevel = "info"
	}

	return &Config{
		Environment: env,
		Port:        getEnv("PORT", "8095"),
		LogLevel:    getEnv("LOG_LEVEL", defaultLevel),

		DBDriver:    getEnv("DB_DRIVER", DriverPostgres),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		NATSURL:           getEnv("NATS_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 2),
		TaskResultTTL:     getEnvDuration("TASK_RESULT_TTL", 24*time.Hour),

		Import: ImportConfig{
			FilePath:            getEnv("IMPORT_FILE_PATH", "importfile.json"),
			AdminEmail:          adminEmail,
			ReportPath:          getEnv("IMPORT_REPORT_PATH", ""),
			UniqueFallbackKinds: getEnvList("IMPORT_UNIQUE_FALLBACK_KINDS", []string{"OrderItem", "ProductParameter", "ConfirmEmailToken"}),
		},

		Email: EmailConfig{
			Backend:                getEnv("EMAIL_BACKEND", "console"),
			From:                   getEnv("EMAIL_FROM", adminEmail),
			SMTPHost:               getEnv("EMAIL_HOST", "localhost"),
			SMTPPort:               getEnvInt("EMAIL_PORT", 587),
			SMTPUser:               getEnv("EMAIL_HOST_USER", ""),
			SMTPPassword:           loadSecret("EMAIL_HOST_PASSWORD", "SMTP_PASSWORD_SECRET"),
			SMTPUseTLS:             getEnvBool("EMAIL_USE_TLS", false),
			SMTPUseSSL:             getEnvBool("EMAIL_USE_SSL", false),
			NotificationServiceURL: getEnv("NOTIFICATION_SERVICE_URL", "http://notification-service.global.svc.cluster.local:8090"),
			RateLimit:              getEnvFloat("EMAIL_RATE_LIMIT", 5),
		},
	}
}

// InitDB initializes the database connection
func InitDB(cfg *Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Environment == "development" {
		logLevel = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverSQLite:
		path := cfg.DatabaseURL
		if path == "" {
			path = "backoffice.db"
		}
		if !strings.Contains(path, "?") {
			path += "?_foreign_keys=on"
		}
		dialector = sqlite.Open(path)
	case DriverPostgres, "":
		dialector = postgres.Open(postgresDSN(cfg))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// NewLogger builds the service logger
func NewLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func postgresDSN(cfg *Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}

	// Build DSN from individual components if DATABASE_URL not set
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := loadSecret("DB_PASSWORD", "DB_PASSWORD_SECRET")
	dbname := getEnv("DB_NAME", "backoffice_db")
	sslmode := getEnv("DB_SSLMODE", "disable")

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)
}

// loadSecret returns the env var value, or the secret named by secretEnv from
// GCP Secret Manager when USE_GCP_SECRET_MANAGER=true
func loadSecret(envKey, secretEnv string) string {
	fallback := getEnv(envKey, "")
	if os.Getenv("USE_GCP_SECRET_MANAGER") != "true" {
		return fallback
	}
	secretName := os.Getenv(secretEnv)
	if secretName == "" {
		return fallback
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	manager, err := NewSecretManager(ctx, getEnv("GCP_PROJECT_ID", ""))
	if err != nil {
		logrus.Warnf("Failed to initialize GCP Secret Manager: %v (using %s)", err, envKey)
		return fallback
	}
	defer manager.Close()

	value, err := manager.Get(ctx, secretName)
	if err != nil || value == "" {
		logrus.Warnf("Failed to load secret %s: %v (using %s)", secretName, err, envKey)
		return fallback
	}
	return value
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList parses a comma separated list; an explicitly empty value ("-") yields an empty list
func getEnvList(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	if value == "-" {
		return []string{}
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
