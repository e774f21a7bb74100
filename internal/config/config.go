package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/mesonet-etl/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Mesonet provider settings.
	MesonetBaseURL string
	MesonetTimeout time.Duration
	MesonetStation string   // empty polls network snapshots
	MesonetFields  []string // empty keeps every variable
	PollInterval   time.Duration
	PollLag        time.Duration // provider publication delay
	StationsFile   string

	KafkaBrokers    []string
	KafkaSinkTopic  string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mesonetTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MESONET_TIMEOUT", "30s"))
	if err != nil || mesonetTimeout <= 0 {
		return nil, errors.New("invalid MESONET_TIMEOUT")
	}

	pollInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("POLL_INTERVAL", "5m"))
	if err != nil || pollInterval < time.Minute {
		return nil, errors.New("invalid POLL_INTERVAL: must be a duration of at least 1m")
	}

	pollLag, err := time.ParseDuration(sharedcfg.EnvOrDefault("POLL_LAG", "5m"))
	if err != nil || pollLag < 0 {
		return nil, errors.New("invalid POLL_LAG: must be a non-negative duration")
	}

	cfg := &Config{
		MesonetBaseURL: sharedcfg.EnvOrDefault("MESONET_BASE_URL", "http://www.mesonet.org/public/data/getfile.php"),
		MesonetTimeout: mesonetTimeout,
		MesonetStation: strings.TrimSpace(os.Getenv("MESONET_STATION")),
		MesonetFields:  ParseFields(os.Getenv("MESONET_FIELDS")),
		PollInterval:   pollInterval,
		PollLag:        pollLag,
		StationsFile:   os.Getenv("STATIONS_FILE"),

		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:  sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "mesonet-observations"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	for _, f := range cfg.MesonetFields {
		if _, err := domain.ResolveVariable(f); err != nil {
			return nil, fmt.Errorf("invalid MESONET_FIELDS: %w", err)
		}
	}
	if cfg.MesonetBaseURL == "" {
		return nil, errors.New("MESONET_BASE_URL is required")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

// ParseFields splits a comma-separated field list, dropping blanks.
func ParseFields(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
