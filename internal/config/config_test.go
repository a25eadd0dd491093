package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Port:             "8082",
		DataDir:          t.TempDir(),
		LocalBackend:     "memory",
		SaveTimeout:      10 * time.Second,
		SessionTTL:       30 * time.Minute,
		SessionCacheSize: 100,
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOCAL_BACKEND", "FIRESTORE_COLLECTION", "SAVE_TIMEOUT"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8082" {
		t.Fatalf("expected default port 8082, got %q", cfg.Port)
	}
	if cfg.LocalBackend != "sqlite" {
		t.Fatalf("expected default local backend sqlite, got %q", cfg.LocalBackend)
	}
	if cfg.FirestoreCollection != "budgets" {
		t.Fatalf("expected default collection budgets, got %q", cfg.FirestoreCollection)
	}
	if cfg.SaveTimeout != 10*time.Second {
		t.Fatalf("expected default save timeout 10s, got %v", cfg.SaveTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOCAL_BACKEND", "memory")
	t.Setenv("SAVE_TIMEOUT", "5s")
	t.Setenv("SESSION_CACHE_SIZE", "7")

	cfg := Load()
	if cfg.Port != "9090" || cfg.LocalBackend != "memory" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.SaveTimeout != 5*time.Second || cfg.SessionCacheSize != 7 {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Port = "abc" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port"},
		{"bad local backend", func(c *Config) { c.LocalBackend = "redis" }, "invalid local backend"},
		{"bad remote backend", func(c *Config) { c.RemoteBackend = "redis" }, "invalid remote backend"},
		{"sqlite without path", func(c *Config) { c.LocalBackend = "sqlite"; c.SQLiteDBPath = "" }, "SQLite database path"},
		{"firestore without project", func(c *Config) { c.RemoteBackend = "firestore" }, "Firestore project"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost" }, "AMQP URL scheme"},
		{"amqp without queue", func(c *Config) { c.AMQPURL = "amqp://localhost"; c.AMQPExchange = "x"; c.AMQPQueue = "" }, "queue name"},
		{"save timeout too small", func(c *Config) { c.SaveTimeout = 10 * time.Millisecond }, "save timeout"},
		{"session ttl too small", func(c *Config) { c.SessionTTL = time.Second }, "session TTL"},
		{"cache size zero", func(c *Config) { c.SessionCacheSize = 0 }, "session cache size"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateCreatesSQLiteDirectory(t *testing.T) {
	cfg := validConfig(t)
	cfg.LocalBackend = "sqlite"
	cfg.SQLiteDBPath = filepath.Join(t.TempDir(), "nested", "dir", "db.sqlite")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
