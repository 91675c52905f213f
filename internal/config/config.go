package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
)

// Config holds process-wide settings read from the environment.
type Config struct {
	Port           string
	UseMemoryStore bool
	SkipAuth       bool
	ProjectID      string
	LogLevel       string
	Currency       string

	Detection Detection

	// BillProjectionMaxIterations caps the forward walk of a single bill.
	BillProjectionMaxIterations int
}

// Detection holds the recurring-pattern thresholds.
type Detection struct {
	MinOccurrences     int
	MaxDayVariation    float64
	MerchantSimilarity float64
	AmountDeviation    float64
}

// Defaults.
const (
	DefaultPort                        = "8111"
	DefaultProjectID                   = "finassist-dev"
	DefaultCurrency                    = "RM"
	DefaultMinOccurrences              = 3
	DefaultMaxDayVariation             = 4.0
	DefaultMerchantSimilarity          = 0.90
	DefaultAmountDeviation             = 0.05
	DefaultBillProjectionMaxIterations = 100
)

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using getenv for lookups.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:           getenv("PORT"),
		UseMemoryStore: getenv("USE_MEMORY_STORE") == "true" || getenv("ENV") == "local",
		SkipAuth:       getenv("SKIP_AUTH") == "true",
		ProjectID:      getenv("GOOGLE_CLOUD_PROJECT"),
		LogLevel:       getenv("LOG_LEVEL"),
		Currency:       getenv("CURRENCY"),
	}
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = DefaultProjectID
	}
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}

	var err error
	if cfg.Detection.MinOccurrences, err = intVar(getenv, "RECURRING_MIN_OCCURRENCES", DefaultMinOccurrences); err != nil {
		return Config{}, err
	}
	if cfg.Detection.MaxDayVariation, err = floatVar(getenv, "RECURRING_MAX_DAY_VARIATION", DefaultMaxDayVariation); err != nil {
		return Config{}, err
	}
	if cfg.Detection.MerchantSimilarity, err = floatVar(getenv, "RECURRING_MERCHANT_SIMILARITY", DefaultMerchantSimilarity); err != nil {
		return Config{}, err
	}
	if cfg.Detection.AmountDeviation, err = floatVar(getenv, "RECURRING_AMOUNT_DEVIATION", DefaultAmountDeviation); err != nil {
		return Config{}, err
	}
	if cfg.BillProjectionMaxIterations, err = intVar(getenv, "BILL_PROJECTION_MAX_ITERATIONS", DefaultBillProjectionMaxIterations); err != nil {
		return Config{}, err
	}

	if cfg.Detection.MinOccurrences < 1 {
		return Config{}, fmt.Errorf("RECURRING_MIN_OCCURRENCES must be at least 1")
	}
	if s := cfg.Detection.MerchantSimilarity; s <= 0 || s > 1 {
		return Config{}, fmt.Errorf("RECURRING_MERCHANT_SIMILARITY must be in (0, 1]")
	}
	if cfg.Detection.MaxDayVariation < 0 || cfg.Detection.AmountDeviation < 0 {
		return Config{}, fmt.Errorf("recurring tolerances must not be negative")
	}
	if cfg.BillProjectionMaxIterations < 1 {
		return Config{}, fmt.Errorf("BILL_PROJECTION_MAX_ITERATIONS must be at least 1")
	}

	return cfg, nil
}

func intVar(getenv func(string) string, key string, def int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func floatVar(getenv func(string) string, key string, def float64) (float64, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parse %s: %q is not a finite number", key, raw)
	}
	return v, nil
}
