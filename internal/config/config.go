// Package config provides configuration structures and validation for the
// receipt ingestion service. It handles environment-based configuration for
// all major components: HTTP server, databases, the session store, the
// Telegram channel, the extraction model and the mail inbox poller.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration. Each field represents
// a major subsystem's configuration and is validated during startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Redis       RedisConfig
	Telegram    TelegramConfig
	Extraction  ExtractionConfig
	Session     SessionConfig
	Mail        MailConfig
	WorkerPool  WorkerPoolConfig
	Uploads     UploadsConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Minimum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration for the extraction audit log
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// RedisConfig contains Redis configuration for the durable session backend.
// When Addr is empty the gateway falls back to the in-process session store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TelegramConfig contains Telegram Bot API configuration
type TelegramConfig struct {
	Token string
}

// ExtractionConfig contains settings for the LLM extraction adapter
type ExtractionConfig struct {
	Model     string        // Model name passed to the GenAI API
	MaxTokens int           // Upper bound on generated tokens per call
	Timeout   time.Duration // Per-call deadline for model requests
}

// SessionConfig controls the conversational slot-filling session manager
type SessionConfig struct {
	IdleTimeout    time.Duration // Idle eviction threshold for a chat session
	RequiredFields []string      // Candidate fields that must be filled before commit
	Timezone       string        // IANA name of the business timezone
}

// MailConfig contains IMAP inbox poller configuration
type MailConfig struct {
	Host         string
	Port         int
	Username     string
	Password     string
	TLS          bool
	Mailbox      string
	PollInterval time.Duration
	FetchMax     int
}

// WorkerPoolConfig contains worker pool configuration for the inbox processor
type WorkerPoolConfig struct {
	Size int
}

// UploadsConfig contains settings for locally stored slip images
type UploadsConfig struct {
	Dir string
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}

	// Validate Telegram config
	if c.Telegram.Token == "" {
		validationErrors = append(validationErrors, "TELEGRAM_TOKEN is required")
	}

	// Validate Extraction config
	if c.Extraction.Model == "" {
		validationErrors = append(validationErrors, "EXTRACTION_MODEL is required")
	}
	if c.Extraction.MaxTokens <= 0 {
		validationErrors = append(validationErrors, "EXTRACTION_MAX_TOKENS must be greater than 0")
	}
	if c.Extraction.Timeout <= 0 {
		validationErrors = append(validationErrors, "EXTRACTION_TIMEOUT must be greater than 0")
	}

	// Validate Session config
	if c.Session.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SESSION_IDLE_TIMEOUT must be greater than 0")
	}
	if len(c.Session.RequiredFields) == 0 {
		validationErrors = append(validationErrors, "SESSION_REQUIRED_FIELDS is required")
	}
	if c.Session.Timezone == "" {
		validationErrors = append(validationErrors, "SESSION_TIMEZONE is required")
	}

	// Validate Mail config
	if c.Mail.PollInterval <= 0 {
		validationErrors = append(validationErrors, "MAIL_POLL_INTERVAL must be greater than 0")
	}
	if c.Mail.FetchMax <= 0 {
		validationErrors = append(validationErrors, "MAIL_FETCH_MAX must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
