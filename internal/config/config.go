package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string      `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	KafkaSourceTopic string        `env:"KAFKA_SOURCE_TOPIC" envDefault:"hazard-curve-sets"`
	KafkaSinkTopic   string        `env:"KAFKA_SINK_TOPIC" envDefault:"resolved-thresholds"`
	KafkaGroupID     string        `env:"KAFKA_GROUP_ID" envDefault:"hazard-threshold-etl"`
	HTTPAddr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	BatchSize          int           `env:"BATCH_SIZE" envDefault:"50"`
	BatchFlushInterval time.Duration `env:"BATCH_FLUSH_INTERVAL" envDefault:"500ms"`

	// Resolver tuning.
	ResolveFloor       float64 `env:"RESOLVE_FLOOR" envDefault:"1e-10"`
	ResolveParallelism int     `env:"RESOLVE_PARALLELISM" envDefault:"1"`
	AlarmProfilePath   string  `env:"ALARM_PROFILE_PATH"`

	// OpenQuake engine fetch configuration; enabled when a base URL is set.
	EngineBaseURL   string        `env:"ENGINE_BASE_URL"`
	EngineEnabled   bool          `env:"ENGINE_ENABLED"`
	EngineTimeout   time.Duration `env:"ENGINE_TIMEOUT" envDefault:"5s"`
	EngineCacheSize int           `env:"ENGINE_CACHE_SIZE" envDefault:"100"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	// Fetching defaults to on whenever a base URL is provided; ENGINE_ENABLED
	// can force it off without clearing the URL.
	if _, overridden := os.LookupEnv("ENGINE_ENABLED"); !overridden {
		cfg.EngineEnabled = cfg.EngineBaseURL != ""
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.New("invalid BATCH_SIZE")
	}
	if cfg.BatchFlushInterval <= 0 {
		return nil, errors.New("invalid BATCH_FLUSH_INTERVAL")
	}
	if cfg.ResolveFloor <= 0 {
		return nil, errors.New("RESOLVE_FLOOR must be positive")
	}
	if cfg.ResolveParallelism < 1 {
		return nil, errors.New("RESOLVE_PARALLELISM must be at least 1")
	}
	if cfg.EngineEnabled && cfg.EngineBaseURL == "" {
		return nil, errors.New("ENGINE_ENABLED is true but ENGINE_BASE_URL is not set")
	}
	if cfg.EngineTimeout <= 0 {
		return nil, errors.New("invalid ENGINE_TIMEOUT")
	}
	if cfg.EngineCacheSize <= 0 {
		return nil, errors.New("invalid ENGINE_CACHE_SIZE")
	}

	return cfg, nil
}
