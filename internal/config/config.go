package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultTaxClassification is applied to every transaction and line item
// that does not specify its own classification
const DefaultTaxClassification = "Otherwise Exempt"

// Config holds the gateway credentials and per-request defaults. There
// is no persisted state: everything here is supplied by the caller.
type Config struct {
	// Login and Password authenticate every CashBox call
	Login    string
	Password string

	// TestMode selects the prodtest endpoint instead of live
	TestMode bool

	// Timeout applies to both the connection and response phases of a
	// call
	Timeout time.Duration

	// TaxClassification is the default classification for transactions
	// and line items that do not carry their own
	TaxClassification string

	// MinChargebackProbability gates authorizations on the processor's
	// risk score (0-100; 100 disables the gate)
	MinChargebackProbability int

	// StatementDescriptor appears on the cardholder's statement
	StatementDescriptor string

	// HOAReturnURL and HOAErrorURL are the default redirect targets for
	// hosted sessions
	HOAReturnURL string
	HOAErrorURL  string

	Logger LoggerConfig
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Login:                    getEnv("VINDICIA_LOGIN", ""),
		Password:                 getEnv("VINDICIA_PASSWORD", ""),
		TestMode:                 getEnvAsBool("VINDICIA_TEST_MODE", true),
		Timeout:                  time.Duration(getEnvAsInt("VINDICIA_TIMEOUT", 60)) * time.Second,
		TaxClassification:        getEnv("VINDICIA_TAX_CLASSIFICATION", DefaultTaxClassification),
		MinChargebackProbability: getEnvAsInt("VINDICIA_MIN_CHARGEBACK_PROBABILITY", 100),
		StatementDescriptor:      getEnv("VINDICIA_STATEMENT_DESCRIPTOR", ""),
		HOAReturnURL:             getEnv("VINDICIA_HOA_RETURN_URL", ""),
		HOAErrorURL:              getEnv("VINDICIA_HOA_ERROR_URL", ""),
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Validate required fields
	if cfg.Login == "" {
		return nil, fmt.Errorf("VINDICIA_LOGIN is required")
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("VINDICIA_PASSWORD is required")
	}
	if cfg.MinChargebackProbability < 0 || cfg.MinChargebackProbability > 100 {
		return nil, fmt.Errorf("VINDICIA_MIN_CHARGEBACK_PROBABILITY must be between 0 and 100")
	}

	return cfg, nil
}

// Normalize fills zero-valued defaults on a caller-constructed config
func (c *Config) Normalize() {
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	if c.TaxClassification == "" {
		c.TaxClassification = DefaultTaxClassification
	}
	if c.MinChargebackProbability == 0 {
		c.MinChargebackProbability = 100
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as a boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
