// Package config loads the import configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mmynk/splitwiser-import/pkg/money"
)

// Config holds the settings of an import run. CLI flags override these.
type Config struct {
	// DBPath is the SQLite database the ledger is written to.
	DBPath string

	// GroupName is the display name of the imported group.
	GroupName string

	// Currency is the ISO-4217 code of the group.
	Currency string

	// CategoriesPath is a label,category translation table. Empty means
	// the built-in French table.
	CategoriesPath string

	// MetricsFile is where import metrics are written, if set.
	MetricsFile string

	LogLevel string
}

// Load reads configuration from environment variables, after loading a
// .env file from the working directory if there is one.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	return &Config{
		DBPath:         getEnv("SPLITIMPORT_DB_PATH", "./data/splitwiser.db"),
		GroupName:      getEnv("SPLITIMPORT_GROUP_NAME", "Splitwise"),
		Currency:       getEnv("SPLITIMPORT_CURRENCY", "EUR"),
		CategoriesPath: getEnv("SPLITIMPORT_CATEGORIES", ""),
		MetricsFile:    getEnv("SPLITIMPORT_METRICS_FILE", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}, nil
}

// Validate checks the group settings and normalizes the currency code.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.GroupName) == "" {
		return errors.New("group name is required")
	}
	code, err := money.NormalizeCurrency(c.Currency)
	if err != nil {
		return err
	}
	c.Currency = code
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
