package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/ledger"
)

type Config struct {
	// HTTP Server
	Port string

	// Snapshot persistence
	DataBackend  string // "sqlite" or "file"
	SQLiteDBPath string
	SnapshotPath string

	// AMQP (optional; empty URL disables sync events)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Remote expense API (worker only)
	RemoteAPIURL   string
	RemoteAPIToken string
	RemoteOwnerID  string

	// Worker
	SyncBatchSize int
	SyncInterval  time.Duration

	// Ledger defaults
	DefaultBudgetCents int64
	ReportRecipient    string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8082"),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/spendlog.db"),
		SnapshotPath: getEnv("SNAPSHOT_PATH", "./data/ledger.json"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spendlog"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_records"),

		RemoteAPIURL:   getEnv("REMOTE_API_URL", ""),
		RemoteAPIToken: getEnv("REMOTE_API_TOKEN", ""),
		RemoteOwnerID:  getEnv("REMOTE_OWNER_ID", ""),

		SyncBatchSize: getEnvInt("SYNC_BATCH_SIZE", 25),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL", 5*time.Minute),

		DefaultBudgetCents: getEnvBudget("BUDGET_DEFAULT", ledger.DefaultBudgetCents),
		ReportRecipient:    getEnv("REPORT_RECIPIENT", "Amma"),
	}
}

// Validate checks the configuration, collecting every problem instead of
// stopping at the first.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			errs = append(errs, ensureDir(c.SQLiteDBPath)...)
		}
	case "file":
		if c.SnapshotPath == "" {
			errs = append(errs, "snapshot file path cannot be empty when using file backend")
		} else {
			errs = append(errs, ensureDir(c.SnapshotPath)...)
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [sqlite file]", c.DataBackend))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RemoteAPIURL != "" {
		if parsed, err := url.Parse(c.RemoteAPIURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid remote API URL '%s': %v", c.RemoteAPIURL, err))
		} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
			errs = append(errs, fmt.Sprintf("invalid remote API URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
		}
	}

	if c.SyncBatchSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid sync batch size %d: must be at least 1", c.SyncBatchSize))
	} else if c.SyncBatchSize > 1000 {
		errs = append(errs, fmt.Sprintf("invalid sync batch size %d: must be at most 1000", c.SyncBatchSize))
	}

	if c.SyncInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if c.DefaultBudgetCents < 0 {
		errs = append(errs, fmt.Sprintf("invalid default budget %d: must be non-negative", c.DefaultBudgetCents))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func ensureDir(path string) []string {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return []string{fmt.Sprintf("cannot create data directory '%s': %v", dir, err)}
		}
	}
	return nil
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

// getEnvBudget reads a budget limit in currency units ("5000" or
// "5000.50") and converts it to cents; malformed values keep the default.
func getEnvBudget(key string, defaultCents int64) int64 {
	if value := os.Getenv(key); value != "" {
		if cents := core.ParseBudgetCents(value); cents > 0 {
			return cents
		}
	}
	return defaultCents
}
