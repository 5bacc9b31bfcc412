package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emberwatch/hotspot-etl-service/internal/domain"
)

// SinkKind selects where validated fire polygons are persisted.
type SinkKind string

const (
	SinkKafka    SinkKind = "kafka"
	SinkPostgres SinkKind = "postgres"
	SinkBoth     SinkKind = "both"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	FIRMSAPIKey   string
	FIRMSBaseURL  string
	FIRMSDayRange int
	FetchTimeout  time.Duration

	BoundingBox            domain.BoundingBox
	Products               []string
	Lookback               time.Duration
	ClusterEps             float64
	ClusterMinSamples      int
	MinClusterSize         int
	RequiredHighConfidence int

	SinkKind       SinkKind
	KafkaBrokers   []string
	KafkaSinkTopic string
	DatabaseURL    string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	RunOnStart      bool
}

// Load reads configuration from environment variables, applying defaults
// where unset. All invocation parameters are validated here, before any
// fetch can occur.
func Load() (*Config, error) {
	bbox, err := domain.ParseBoundingBox(envOrDefault("FIRMS_BBOX", "world"))
	if err != nil {
		return nil, fmt.Errorf("FIRMS_BBOX: %w", err)
	}

	dayRange, err := parsePositiveInt("FIRMS_DAY_RANGE", 2)
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	lookback, err := parsePositiveDuration("LOOKBACK", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	eps, err := parsePositiveFloat("CLUSTER_EPS", domain.DefaultEps)
	if err != nil {
		return nil, err
	}
	minSamples, err := parsePositiveInt("CLUSTER_MIN_SAMPLES", domain.DefaultMinSamples)
	if err != nil {
		return nil, err
	}
	minClusterSize, err := parsePositiveInt("MIN_CLUSTER_SIZE", domain.DefaultMinClusterSize)
	if err != nil {
		return nil, err
	}
	requiredHighConf, err := parsePositiveInt("REQUIRED_HIGH_CONFIDENCE", domain.DefaultRequiredHighConfidence)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		FIRMSAPIKey:   os.Getenv("FIRMS_API_KEY"),
		FIRMSBaseURL:  envOrDefault("FIRMS_BASE_URL", "https://firms.modaps.eosdis.nasa.gov/api/area/csv"),
		FIRMSDayRange: dayRange,
		FetchTimeout:  fetchTimeout,

		BoundingBox:            bbox,
		Products:               parseList(envOrDefault("FIRMS_PRODUCTS", strings.Join(domain.DefaultProducts, ","))),
		Lookback:               lookback,
		ClusterEps:             eps,
		ClusterMinSamples:      minSamples,
		MinClusterSize:         minClusterSize,
		RequiredHighConfidence: requiredHighConf,

		SinkKind:       SinkKind(envOrDefault("SINK_KIND", string(SinkKafka))),
		KafkaBrokers:   parseList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "validated-fire-polygons"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		RunOnStart:      os.Getenv("RUN_ON_START") == "true",
	}

	if cfg.FIRMSAPIKey == "" {
		return nil, errors.New("FIRMS_API_KEY is required")
	}
	if len(cfg.Products) == 0 {
		return nil, errors.New("FIRMS_PRODUCTS must name at least one product")
	}

	switch cfg.SinkKind {
	case SinkKafka, SinkPostgres, SinkBoth:
	default:
		return nil, fmt.Errorf("SINK_KIND must be one of kafka, postgres, both; got %q", cfg.SinkKind)
	}
	if cfg.SinkKind != SinkPostgres {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required for the kafka sink")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required for the kafka sink")
		}
	}
	if cfg.SinkKind != SinkKafka && cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required for the postgres sink")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseList splits a comma-separated env value, trimming whitespace and
// dropping empty entries.
func parseList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, s)
	}
	return n, nil
}

func parsePositiveFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", key, s)
	}
	return v, nil
}

func parsePositiveDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, s)
	}
	return d, nil
}
