package config

import (
	"fmt"
	"strings"
	"time"

	"config-console/shared/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the settings of the configuration backend.
type Config struct {
	Env      string `envconfig:"ENV" default:"development"`
	Port     string `envconfig:"CONFIG_SERVER_PORT" default:"8091"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	RunMigrations bool          `envconfig:"RUN_MIGRATIONS" default:"true"`
	// loaded from the db_password secret, not from a tag
	DBPassword string `ignored:"true"`

	// Redis backs the list cache and the write rate limiter.
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"30s"`

	// Empty URL disables change events.
	RabbitMQURL string `envconfig:"RABBITMQ_URL"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:8084"`
	PutRateLimit       uint   `envconfig:"PUT_RATE_LIMIT" default:"30"` // writes per minute per operator (client IP without X-Console-Operator)
}

// LoadConfig reads .env (if present), the environment and the db_password secret.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config-service configuration: %w", err)
	}

	password, err := utils.ReadSecretOrEnv("db_password", "DB_PASSWORD")
	if err != nil {
		return nil, err
	}
	cfg.DBPassword = password
	return &cfg, nil
}

// GetDSN returns the PostgreSQL connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// GetAllowedOrigins splits CORSAllowedOrigins on commas.
func (c *Config) GetAllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
