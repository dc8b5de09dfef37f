// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/saadz-khan/smartcampus/internal/database"
	"github.com/sirupsen/logrus"
)

// Config is the full process configuration.
type Config struct {
	HTTPAddr    string   `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string   `env:"LOG_FORMAT" envDefault:"text"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	Storage database.StoreConfig

	AskTimeout time.Duration `env:"ASK_TIMEOUT" envDefault:"5s"`

	MaxSlotDuration     time.Duration `env:"MAX_SLOT_DURATION" envDefault:"2h"`
	OneBookingPerDay    bool          `env:"ONE_BOOKING_PER_DAY" envDefault:"true"`
	CancelRequiresOwner bool          `env:"CANCEL_REQUIRES_OWNER" envDefault:"true"`
	ContactDomain       string        `env:"CONTACT_DOMAIN"`

	SocketIOEnabled bool `env:"SOCKETIO_ENABLED" envDefault:"true"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads a .env file from the working directory when present and then
// parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.AskTimeout <= 0 {
		return Config{}, fmt.Errorf("ASK_TIMEOUT must be positive, got %s", cfg.AskTimeout)
	}
	if cfg.MaxSlotDuration <= 0 {
		return Config{}, fmt.Errorf("MAX_SLOT_DURATION must be positive, got %s", cfg.MaxSlotDuration)
	}
	return cfg, nil
}

// ConfigureLogging applies level and format to the standard logrus logger.
func ConfigureLogging(cfg Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(level)

	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}
	return nil
}
