package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendDynamoDB = "dynamodb"
)

// MinSecretLength is the shortest JWT_SECRET accepted at startup.
const MinSecretLength = 32

type Config struct {
	Port              string        `env:"PORT,                default=4000"`
	Env               string        `env:"ENV,                 default=development"`
	LogLevel          string        `env:"LOG_LEVEL,           default=info"`
	JWTSecret         string        `env:"JWT_SECRET"`
	TokenTTL          time.Duration `env:"TOKEN_TTL,           default=24h"`
	CORSAllowedOrigin string        `env:"CORS_ALLOWED_ORIGIN, default=http://localhost:3000"`
	BodyLimit         string        `env:"BODY_LIMIT,          default=10M"`
	RateLimitAuth     int           `env:"RATE_LIMIT_AUTH,     default=10"`
	StoreBackend      string        `env:"STORE_BACKEND,       default=mongo"`

	Mongo    MongoConfig
	DynamoDB DynamoDBConfig
	Redis    RedisConfig
	Events   EventsConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=connectly"`
}

type DynamoDBConfig struct {
	Region          string `env:"AWS_REGION,              default=us-east-1"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint        string `env:"DYNAMODB_ENDPOINT"`
	UsersTable      string `env:"DYNAMODB_USERS_TABLE,    default=ConnectlyUsers"`
	MessagesTable   string `env:"DYNAMODB_MESSAGES_TABLE, default=Messages"`
}

// RedisConfig is optional; an empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

// EventsConfig is optional; an empty URL disables chat event publication.
type EventsConfig struct {
	RabbitMQURL string `env:"RABBITMQ_URL"`
	Queue       string `env:"EVENTS_QUEUE,  default=chat.message.created"`
	Workers     int    `env:"EVENT_WORKERS, default=4"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch {
	case strings.TrimSpace(c.JWTSecret) == "":
		errs = append(errs, errors.New("JWT_SECRET is required"))
	case len(c.JWTSecret) < MinSecretLength:
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength))
	}

	switch c.StoreBackend {
	case BackendMemory, BackendMongo, BackendDynamoDB:
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND %q is not one of memory, mongo, dynamodb", c.StoreBackend))
	}

	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.RateLimitAuth <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_AUTH must be positive"))
	}
	if c.Events.Workers <= 0 {
		errs = append(errs, errors.New("EVENT_WORKERS must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment reports whether the server runs with developer defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
