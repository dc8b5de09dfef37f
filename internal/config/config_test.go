package config

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.Storage.Type != "memory" || cfg.Storage.Postgres.Port != "5432" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.AskTimeout != 5*time.Second || cfg.MaxSlotDuration != 2*time.Hour {
		t.Errorf("timeouts = %s, %s", cfg.AskTimeout, cfg.MaxSlotDuration)
	}
	if !cfg.OneBookingPerDay || !cfg.CancelRequiresOwner || !cfg.SocketIOEnabled {
		t.Errorf("policy defaults = %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_TYPE", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("ASK_TIMEOUT", "250ms")
	t.Setenv("CANCEL_REQUIRES_OWNER", "false")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Storage.Type != "postgres" || cfg.Storage.Postgres.Host != "db.internal" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.AskTimeout != 250*time.Millisecond {
		t.Errorf("AskTimeout = %s", cfg.AskTimeout)
	}
	if cfg.CancelRequiresOwner {
		t.Error("CancelRequiresOwner should be false")
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ASK_TIMEOUT", "soon")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("Load() error = %v, want parse env error", err)
	}
}

func TestConfigureLogging(t *testing.T) {
	defer logrus.SetLevel(logrus.GetLevel())

	if err := ConfigureLogging(Config{LogLevel: "debug", LogFormat: "json"}); err != nil {
		t.Fatalf("ConfigureLogging() failed: %v", err)
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %s", logrus.GetLevel())
	}
	if err := ConfigureLogging(Config{LogLevel: "loud"}); err == nil {
		t.Error("expected error for bad level")
	}
	if err := ConfigureLogging(Config{LogLevel: "info", LogFormat: "xml"}); err == nil {
		t.Error("expected error for bad format")
	}
	logrus.SetFormatter(&logrus.TextFormatter{})
}
