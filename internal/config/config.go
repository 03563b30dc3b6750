// Package config loads the runtime settings shared by both binaries from the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Service selects the defaults of one binary.
type Service string

const (
	ServiceClinician Service = "clinician"
	ServicePatient   Service = "patient"
)

const (
	StorageDisk = "disk"
	StorageS3   = "s3"

	minSecretKeyLength = 32
)

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type Config struct {
	Service        Service       `mapstructure:"-"`
	Port           string        `mapstructure:"PORT"`
	DatabaseDSN    string        `mapstructure:"DATABASE_DSN"`
	SecretKey      string        `mapstructure:"SECRET_KEY"`
	CookieSecure   bool          `mapstructure:"COOKIE_SECURE"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`
	ReportsDir     string        `mapstructure:"REPORTS_DIR"`
	StorageBackend string        `mapstructure:"STORAGE_BACKEND"`
	S3Bucket       string        `mapstructure:"S3_BUCKET"`
	S3Prefix       string        `mapstructure:"S3_PREFIX"`
	PeerURL        string        `mapstructure:"PEER_URL"`
	PeerTimeout    time.Duration `mapstructure:"PEER_TIMEOUT"`
	ModelPath      string        `mapstructure:"MODEL_PATH"`
	KafkaBrokers   []string      `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic     string        `mapstructure:"KAFKA_TOPIC"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
}

var keys = []string{
	"PORT",
	"DATABASE_DSN",
	"SECRET_KEY",
	"COOKIE_SECURE",
	"SESSION_TTL",
	"REPORTS_DIR",
	"STORAGE_BACKEND",
	"S3_BUCKET",
	"S3_PREFIX",
	"PEER_URL",
	"PEER_TIMEOUT",
	"MODEL_PATH",
	"KAFKA_BROKERS",
	"KAFKA_TOPIC",
	"LOG_LEVEL",
}

func setDefaults(v *viper.Viper, service Service) {
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("STORAGE_BACKEND", StorageDisk)
	v.SetDefault("PEER_TIMEOUT", "10s")
	v.SetDefault("KAFKA_TOPIC", "vocalis.reports")
	v.SetDefault("LOG_LEVEL", "info")

	switch service {
	case ServiceClinician:
		v.SetDefault("PORT", "5000")
		v.SetDefault("DATABASE_DSN", "data/clinician.db")
		v.SetDefault("REPORTS_DIR", "data/clinician_reports")
		v.SetDefault("PEER_URL", "http://localhost:5001")
		v.SetDefault("MODEL_PATH", "models/parkinsons_linear.json")
	case ServicePatient:
		v.SetDefault("PORT", "5001")
		v.SetDefault("DATABASE_DSN", "data/patient.db")
		v.SetDefault("REPORTS_DIR", "data/patient_reports")
		v.SetDefault("PEER_URL", "http://localhost:5000")
	}
}

// Load reads settings for service. Values from the process environment win
// over the .env file, which wins over defaults.
func Load(service Service) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v, service)
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Service = service
	cfg.KafkaBrokers = splitList(strings.Join(cfg.KafkaBrokers, ","))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (cfg *Config) Validate() error {
	if err := validateSecretKey(cfg.SecretKey); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return errors.New("PORT is required")
	}
	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if strings.TrimSpace(cfg.PeerURL) == "" {
		return errors.New("PEER_URL is required")
	}
	if cfg.PeerTimeout <= 0 {
		return errors.New("PEER_TIMEOUT must be positive")
	}
	if cfg.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}

	switch cfg.StorageBackend {
	case StorageDisk:
		if strings.TrimSpace(cfg.ReportsDir) == "" {
			return errors.New("REPORTS_DIR is required for disk storage")
		}
	case StorageS3:
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return errors.New("S3_BUCKET is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if cfg.Service == ServiceClinician && strings.TrimSpace(cfg.ModelPath) == "" {
		return errors.New("MODEL_PATH is required")
	}
	return nil
}

func validateSecretKey(secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[secret]; insecure {
		return errors.New("SECRET_KEY uses a placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return nil
}

// EventsEnabled reports whether report events go to Kafka.
func (cfg *Config) EventsEnabled() bool {
	return len(cfg.KafkaBrokers) > 0
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
