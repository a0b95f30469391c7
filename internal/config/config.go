package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// USGS event feed.
	FeedURL                 string
	FeedTimeout             time.Duration
	FeedWindow              time.Duration
	RecentWindow            time.Duration
	ExcludedLocationSources []string

	// Analysis.
	PortfolioPath    string
	TopN             int
	RefreshInterval  time.Duration
	AggregateWorkers int

	// Terminal dashboard.
	DashboardEnabled bool
	DashboardColor   bool
	DashboardClear   bool

	// Kafka risk publishing, disabled unless brokers are configured.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSinkTopic     string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	feedTimeout, err := parsePositiveDuration("FEED_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	feedWindow, err := parsePositiveDuration("FEED_WINDOW", "720h")
	if err != nil {
		return nil, err
	}
	recentWindow, err := parsePositiveDuration("RECENT_WINDOW", "168h")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parsePositiveDuration("REFRESH_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}

	topN, err := parsePositiveInt("TOP_N", 10)
	if err != nil {
		return nil, err
	}
	workers, err := parsePositiveInt("AGGREGATE_WORKERS", 1)
	if err != nil {
		return nil, err
	}

	dashboardEnabled, err := parseBool("DASHBOARD_ENABLED", true)
	if err != nil {
		return nil, err
	}
	dashboardColor, err := parseBool("DASHBOARD_COLOR", os.Getenv("NO_COLOR") == "")
	if err != nil {
		return nil, err
	}
	dashboardClear, err := parseBool("DASHBOARD_CLEAR", true)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled, err := parseBool("KAFKA_ENABLED", len(brokers) > 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FeedURL:                 sharedcfg.EnvOrDefault("FEED_URL", "https://earthquake.usgs.gov/fdsnws/event/1/query"),
		FeedTimeout:             feedTimeout,
		FeedWindow:              feedWindow,
		RecentWindow:            recentWindow,
		ExcludedLocationSources: parseList(sharedcfg.EnvOrDefault("EXCLUDED_LOCATION_SOURCES", "hi,hv,us")),

		PortfolioPath:    sharedcfg.EnvOrDefault("PORTFOLIO_PATH", "data/clientlocations.csv"),
		TopN:             topN,
		RefreshInterval:  refreshInterval,
		AggregateWorkers: workers,

		DashboardEnabled: dashboardEnabled,
		DashboardColor:   dashboardColor,
		DashboardClear:   dashboardClear,

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       brokers,
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "portfolio-risk"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.FeedURL == "" {
		return nil, errors.New("FEED_URL is required")
	}
	if cfg.PortfolioPath == "" {
		return nil, errors.New("PORTFOLIO_PATH is required")
	}
	if cfg.RecentWindow > cfg.FeedWindow {
		return nil, errors.New("RECENT_WINDOW must not exceed FEED_WINDOW")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: must be a boolean", key)
	}
	return b, nil
}

// parseList splits a comma-separated list, dropping blanks. An empty result
// is valid and disables the filter it feeds.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
