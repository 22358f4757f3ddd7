// Package config loads the service configuration from defaults, an
// optional YAML file, and environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigFile          = "SUPPORT_GATEWAY_CONFIG_FILE"
	EnvHTTPAddr            = "SUPPORT_GATEWAY_HTTP_ADDR"
	EnvDBDriver            = "SUPPORT_GATEWAY_DB_DRIVER"
	EnvDBDSN               = "SUPPORT_GATEWAY_DB_DSN"
	EnvSessionBackend      = "SUPPORT_GATEWAY_SESSION_BACKEND"
	EnvRedisAddr           = "SUPPORT_GATEWAY_REDIS_ADDR"
	EnvRetrievalURL        = "SUPPORT_GATEWAY_RETRIEVAL_URL"
	EnvConfidenceThreshold = "SUPPORT_GATEWAY_CONFIDENCE_THRESHOLD"
	EnvHistoryWindow       = "SUPPORT_GATEWAY_HISTORY_WINDOW"
	EnvQueueSize           = "SUPPORT_GATEWAY_QUEUE_SIZE"
	EnvSessionIdleTTL      = "SUPPORT_GATEWAY_SESSION_IDLE_TTL"
	EnvWebhookURLs         = "SUPPORT_GATEWAY_WEBHOOK_URLS"
)

const (
	DefaultHTTPAddr            = ":8080"
	DefaultDBDriver            = "sqlite"
	DefaultDBDSN               = "support-gateway.db"
	DefaultSessionBackend      = "memory"
	DefaultRedisAddr           = "127.0.0.1:6379"
	DefaultConfidenceThreshold = 0.3
	DefaultHistoryWindow       = 10
	DefaultQueueSize           = 256
	DefaultSessionIdleTTL      = 24 * time.Hour
)

type Config struct {
	HTTPAddr            string
	DBDriver            string
	DBDSN               string
	SessionBackend      string
	RedisAddr           string
	RetrievalURL        string
	ConfidenceThreshold float64
	HistoryWindow       int
	QueueSize           int
	SessionIdleTTL      time.Duration
	WebhookURLs         []string
}

type fileConfig struct {
	HTTPAddr            string   `yaml:"http_addr"`
	DBDriver            string   `yaml:"db_driver"`
	DBDSN               string   `yaml:"db_dsn"`
	SessionBackend      string   `yaml:"session_backend"`
	RedisAddr           string   `yaml:"redis_addr"`
	RetrievalURL        string   `yaml:"retrieval_url"`
	ConfidenceThreshold *float64 `yaml:"confidence_threshold"`
	HistoryWindow       *int     `yaml:"history_window"`
	QueueSize           *int     `yaml:"queue_size"`
	SessionIdleTTL      string   `yaml:"session_idle_ttl"`
	WebhookURLs         []string `yaml:"webhook_urls"`
}

// Load builds the configuration: defaults, then the YAML file named by
// SUPPORT_GATEWAY_CONFIG_FILE (when set), then environment overrides.
func Load() (Config, error) {
	cfg := defaults()

	if path := envString(EnvConfigFile); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func defaults() Config {
	return Config{
		HTTPAddr:            DefaultHTTPAddr,
		DBDriver:            DefaultDBDriver,
		DBDSN:               DefaultDBDSN,
		SessionBackend:      DefaultSessionBackend,
		RedisAddr:           DefaultRedisAddr,
		ConfidenceThreshold: DefaultConfidenceThreshold,
		HistoryWindow:       DefaultHistoryWindow,
		QueueSize:           DefaultQueueSize,
		SessionIdleTTL:      DefaultSessionIdleTTL,
	}
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var source fileConfig
	if err := yaml.Unmarshal(data, &source); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	if value := strings.TrimSpace(source.HTTPAddr); value != "" {
		cfg.HTTPAddr = value
	}
	if value := strings.TrimSpace(source.DBDriver); value != "" {
		cfg.DBDriver = strings.ToLower(value)
	}
	if value := strings.TrimSpace(source.DBDSN); value != "" {
		cfg.DBDSN = value
	}
	if value := strings.TrimSpace(source.SessionBackend); value != "" {
		cfg.SessionBackend = strings.ToLower(value)
	}
	if value := strings.TrimSpace(source.RedisAddr); value != "" {
		cfg.RedisAddr = value
	}
	if value := strings.TrimSpace(source.RetrievalURL); value != "" {
		cfg.RetrievalURL = value
	}
	if source.ConfidenceThreshold != nil {
		cfg.ConfidenceThreshold = *source.ConfidenceThreshold
	}
	if source.HistoryWindow != nil {
		cfg.HistoryWindow = *source.HistoryWindow
	}
	if source.QueueSize != nil {
		cfg.QueueSize = *source.QueueSize
	}
	if value := strings.TrimSpace(source.SessionIdleTTL); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid session_idle_ttl %q: %w", value, err)
		}
		cfg.SessionIdleTTL = parsed
	}
	if len(source.WebhookURLs) > 0 {
		cfg.WebhookURLs = trimAll(source.WebhookURLs)
	}

	return nil
}

func applyEnv(cfg *Config) error {
	cfg.HTTPAddr = envOrDefault(EnvHTTPAddr, cfg.HTTPAddr)
	cfg.DBDriver = strings.ToLower(envOrDefault(EnvDBDriver, cfg.DBDriver))
	cfg.DBDSN = envOrDefault(EnvDBDSN, cfg.DBDSN)
	cfg.SessionBackend = strings.ToLower(envOrDefault(EnvSessionBackend, cfg.SessionBackend))
	cfg.RedisAddr = envOrDefault(EnvRedisAddr, cfg.RedisAddr)
	cfg.RetrievalURL = envOrDefault(EnvRetrievalURL, cfg.RetrievalURL)

	if raw := envString(EnvConfidenceThreshold); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvConfidenceThreshold, raw, err)
		}
		cfg.ConfidenceThreshold = parsed
	}
	if raw := envString(EnvHistoryWindow); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvHistoryWindow, raw, err)
		}
		cfg.HistoryWindow = parsed
	}
	if raw := envString(EnvQueueSize); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvQueueSize, raw, err)
		}
		cfg.QueueSize = parsed
	}
	if raw := envString(EnvSessionIdleTTL); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvSessionIdleTTL, raw, err)
		}
		cfg.SessionIdleTTL = parsed
	}
	if raw := envString(EnvWebhookURLs); raw != "" {
		cfg.WebhookURLs = trimAll(strings.Split(raw, ","))
	}

	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return fmt.Errorf("%s must not be empty", EnvHTTPAddr)
	}
	switch strings.ToLower(strings.TrimSpace(c.SessionBackend)) {
	case "memory", "gorm", "redis":
	default:
		return fmt.Errorf("%s must be memory, gorm or redis", EnvSessionBackend)
	}
	switch strings.ToLower(strings.TrimSpace(c.DBDriver)) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%s must be sqlite or postgres", EnvDBDriver)
	}
	if strings.TrimSpace(c.DBDSN) == "" {
		return fmt.Errorf("%s must not be empty", EnvDBDSN)
	}
	if c.SessionBackend == "redis" && strings.TrimSpace(c.RedisAddr) == "" {
		return fmt.Errorf("%s must not be empty for the redis backend", EnvRedisAddr)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("%s must be between 0 and 1", EnvConfidenceThreshold)
	}
	if c.HistoryWindow <= 0 {
		return fmt.Errorf("%s must be > 0", EnvHistoryWindow)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%s must be > 0", EnvQueueSize)
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("%s must be > 0", EnvSessionIdleTTL)
	}
	return nil
}

func envString(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envOrDefault(key, fallback string) string {
	value := envString(key)
	if value == "" {
		return fallback
	}
	return value
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
