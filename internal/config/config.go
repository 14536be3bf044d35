// Package config holds the settings shared by the API gateway and the ledger processor.
// Each collaborator is handed only its own section.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Auth        AuthConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Redis       RedisConfig
	Paystack    PaystackConfig
	Transfer    TransferConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
}

type ApplicationConfig struct {
	Env  string
	Name string
}

type LoggingConfig struct {
	Level string
}

// ServerConfig also drives the ledger processor's metrics listener.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

type AuthConfig struct {
	JWTSecret string // HMAC key shared with the token issuer
}

type KafkaConfig struct {
	Brokers           string
	FundingTopic      string // Authenticated provider webhooks awaiting processing
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	DLQTopic          string
}

// PostgresConfig is the system of record.
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

// MongoDBConfig backs the ledger read model.
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// RedisConfig contains the webhook de-duplication cache settings.
// The cache is an optimisation in front of the provider_reference constraint, never a replacement.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	DedupTTL time.Duration
}

type PaystackConfig struct {
	BaseURL            string
	SecretKey          string
	Timeout            time.Duration
	BreakerMaxFailures uint32        // Consecutive failures before the breaker opens
	BreakerOpenTimeout time.Duration // How long the breaker stays open
	CallbackURL        string
}

type TransferConfig struct {
	MaxAttempts  int           // Attempts per transfer or funding credit when the store reports a serialization conflict
	RetryBackoff time.Duration // Multiplied by the attempt number between retries
}

// OutboxConfig drives the poller. A row that fails MaxRetryAttempts times is parked.
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

type WorkerPoolConfig struct {
	Size int
}

// problems accumulates every configuration error so operators can fix them in one pass.
type problems []string

func (p *problems) add(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p *problems) required(key, value string) {
	if value == "" {
		p.add("%s is required", key)
	}
}

func positive[N int | int32 | uint32 | uint64 | time.Duration](p *problems, key string, value N) {
	if value <= 0 {
		p.add("%s must be greater than 0", key)
	}
}

func (p *problems) err() error {
	if len(*p) == 0 {
		return nil
	}
	return errors.New(strings.Join(*p, ", "))
}

func (c *Config) validate() error {
	var p problems

	positive(&p, "PORT", c.Server.Port)
	positive(&p, "SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	positive(&p, "SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	positive(&p, "SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	positive(&p, "SERVER_IDLE_TIMEOUT", c.Server.IdleTimeout)

	p.required("APP_KEY", c.Auth.JWTSecret)

	p.required("KAFKA_BROKERS", c.Kafka.Brokers)
	p.required("KAFKA_FUNDING_TOPIC", c.Kafka.FundingTopic)
	p.required("KAFKA_CONSUMER_GROUP", c.Kafka.ConsumerGroup)
	positive(&p, "KAFKA_CONSUMER_MIN_BYTES", c.Kafka.MinBytes)
	positive(&p, "KAFKA_CONSUMER_MAX_BYTES", c.Kafka.MaxBytes)
	positive(&p, "KAFKA_CONSUMER_MAX_WAIT", c.Kafka.MaxWait)

	p.required("DATABASE_URL", c.Postgres.URL)
	positive(&p, "POSTGRES_MAX_CONNS", c.Postgres.MaxConns)
	positive(&p, "POSTGRES_MIN_CONNS", c.Postgres.MinConns)
	if c.Postgres.MinConns > c.Postgres.MaxConns {
		p.add("POSTGRES_MIN_CONNS must not exceed POSTGRES_MAX_CONNS")
	}
	positive(&p, "POSTGRES_MAX_CONN_LIFETIME", c.Postgres.ConnMaxLifetime)
	positive(&p, "POSTGRES_MAX_CONN_IDLE_TIME", c.Postgres.ConnMaxIdleTime)

	p.required("MONGO_URI", c.MongoDB.URI)
	p.required("MONGO_DATABASE", c.MongoDB.Database)
	positive(&p, "MONGO_TIMEOUT", c.MongoDB.Timeout)
	positive(&p, "MONGO_MAX_POOL_SIZE", c.MongoDB.MaxPoolSize)

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			p.add("REDIS_ADDR is required when REDIS_ENABLED is true")
		}
		positive(&p, "REDIS_DEDUP_TTL", c.Redis.DedupTTL)
	}

	p.required("PAYSTACK_BASE_URL", c.Paystack.BaseURL)
	p.required("PAYSTACK_SECRET", c.Paystack.SecretKey)
	positive(&p, "PAYSTACK_TIMEOUT", c.Paystack.Timeout)
	positive(&p, "PAYSTACK_BREAKER_MAX_FAILURES", c.Paystack.BreakerMaxFailures)

	positive(&p, "TRANSFER_MAX_ATTEMPTS", c.Transfer.MaxAttempts)
	if c.Transfer.RetryBackoff < 0 {
		p.add("TRANSFER_RETRY_BACKOFF must not be negative")
	}

	positive(&p, "OUTBOX_POLLING_INTERVAL", c.Outbox.PollingInterval)
	positive(&p, "OUTBOX_BATCH_SIZE", c.Outbox.BatchSize)
	positive(&p, "OUTBOX_MAX_RETRY_ATTEMPTS", c.Outbox.MaxRetryAttempts)

	positive(&p, "WORKER_POOL_SIZE", c.WorkerPool.Size)

	return p.err()
}
