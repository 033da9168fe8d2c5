package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"config-console/shared/utils"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultConfigPath is read when CONSOLE_CONFIG_PATH is not set.
const DefaultConfigPath = "config.yml"

// Config holds the settings of the console service.
type Config struct {
	Env                string   `yaml:"env" env:"ENV" env-default:"development"`
	ServerPort         string   `yaml:"server_port" env:"ADMIN_SERVER_PORT" env-default:"8084"`
	SupportedLanguages []string `yaml:"supported_languages" env:"SUPPORTED_LANGUAGES" env-default:"en-us,zh-cn" env-separator:","`

	ConfigService ConfigServiceConfig `yaml:"config_service"`
	Refresh       RefreshConfig       `yaml:"refresh"`
	Session       SessionConfig       `yaml:"session"`
	RabbitMQ      RabbitMQConfig      `yaml:"rabbitmq"`
	Log           LogConfig           `yaml:"log"`

	// signs flash cookies; from the flash_secret secret or FLASH_SECRET
	FlashSecret string `yaml:"-"`
}

type ConfigServiceConfig struct {
	URL           string        `yaml:"url" env:"CONFIG_SERVICE_URL" env-default:"http://config-service:8091"`
	ClientTimeout time.Duration `yaml:"client_timeout" env:"HTTP_CLIENT_TIMEOUT" env-default:"10s"`
}

// RefreshConfig controls how the page waits for a saved value to become visible.
type RefreshConfig struct {
	Delay           time.Duration `yaml:"delay" env:"REFRESH_DELAY" env-default:"100ms"`
	AckTimeout      time.Duration `yaml:"ack_timeout" env:"REFRESH_ACK_TIMEOUT" env-default:"2s"`
	PollInterval    time.Duration `yaml:"poll_interval" env:"REFRESH_POLL_INTERVAL" env-default:"200ms"`
	MaxPollAttempts int           `yaml:"max_poll_attempts" env:"REFRESH_MAX_POLL_ATTEMPTS" env-default:"5"`
}

type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"30m"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SESSION_SWEEP_INTERVAL" env-default:"1m"`
	SecureCookie  bool          `yaml:"secure_cookie" env:"SESSION_SECURE_COOKIE" env-default:"false"`
}

// RabbitMQConfig is optional; an empty URL disables acknowledgment-driven refresh.
type RabbitMQConfig struct {
	URL string `yaml:"url" env:"RABBITMQ_URL"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// LoadConfig reads the YAML file at path (falling back to the environment when
// it is missing) and the flash secret.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("CONSOLE_CONFIG_PATH")
	}
	if path == "" {
		path = DefaultConfigPath
	}

	var cfg Config
	if _, statErr := os.Stat(path); statErr == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load console configuration: %w", err)
	}

	secret, err := utils.ReadSecretOrEnv("flash_secret", "FLASH_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.FlashSecret = secret

	for i := range cfg.SupportedLanguages {
		cfg.SupportedLanguages[i] = strings.ToLower(strings.TrimSpace(cfg.SupportedLanguages[i]))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.ConfigService.URL == "" {
		errs = append(errs, errors.New("config service URL is required"))
	}
	if c.Refresh.Delay < 0 || c.Refresh.PollInterval < 0 || c.Refresh.AckTimeout < 0 {
		errs = append(errs, errors.New("refresh durations must not be negative"))
	}
	if c.Refresh.MaxPollAttempts < 1 {
		errs = append(errs, errors.New("refresh max poll attempts must be at least 1"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session TTL must be positive"))
	}
	if len(c.SupportedLanguages) == 0 {
		errs = append(errs, errors.New("at least one supported language is required"))
	}
	if len(c.FlashSecret) < 16 {
		errs = append(errs, errors.New("flash secret must be at least 16 bytes"))
	}
	return errors.Join(errs...)
}
