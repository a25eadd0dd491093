package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Data directory (credential cache, default sqlite location)
	DataDir string

	// Document store backends. Sessions read and write the local backend;
	// the worker mirrors local snapshots to the remote backend.
	LocalBackend  string
	RemoteBackend string

	// SQLite
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Firestore
	FirestoreProject      string
	FirestoreCollection   string
	GoogleCredentialsFile string

	// Session
	SaveTimeout      time.Duration
	SessionTTL       time.Duration
	SessionCacheSize int
}

func Load() *Config {
	cfg := &Config{
		Port:    getEnv("PORT", "8082"),
		DataDir: getEnv("DATA_DIR", "./data"),

		LocalBackend:  getEnv("LOCAL_BACKEND", "sqlite"),
		RemoteBackend: getEnv("REMOTE_BACKEND", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/gagyebu.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "gagyebu"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_snapshots"),

		FirestoreProject:      getEnv("FIRESTORE_PROJECT", ""),
		FirestoreCollection:   getEnv("FIRESTORE_COLLECTION", "budgets"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),

		SaveTimeout:      getEnvDuration("SAVE_TIMEOUT", 10*time.Second),
		SessionTTL:       getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionCacheSize: getEnvInt("SESSION_CACHE_SIZE", 100),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite", "firestore"}
	if !contains(validBackends, c.LocalBackend) {
		errs = append(errs, fmt.Sprintf("invalid local backend '%s': must be one of %v", c.LocalBackend, validBackends))
	}
	if c.RemoteBackend != "" && !contains(validBackends, c.RemoteBackend) {
		errs = append(errs, fmt.Sprintf("invalid remote backend '%s': must be one of %v", c.RemoteBackend, validBackends))
	}

	if c.LocalBackend == "sqlite" || c.RemoteBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.LocalBackend == "firestore" || c.RemoteBackend == "firestore" {
		if c.FirestoreProject == "" {
			errs = append(errs, "Firestore project ID is required when using firestore backend")
		}
		if c.FirestoreCollection == "" {
			errs = append(errs, "Firestore collection cannot be empty when using firestore backend")
		}
		if c.GoogleCredentialsFile != "" {
			if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SaveTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid save timeout %v: must be at least 1 second", c.SaveTimeout))
	} else if c.SaveTimeout > time.Minute {
		errs = append(errs, fmt.Sprintf("invalid save timeout %v: must be at most 1 minute", c.SaveTimeout))
	}

	if c.SessionTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	if c.SessionCacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid session cache size %d: must be at least 1", c.SessionCacheSize))
	} else if c.SessionCacheSize > 10000 {
		errs = append(errs, fmt.Sprintf("invalid session cache size %d: must be at most 10000", c.SessionCacheSize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
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
