package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Remote route service.
	RemoteBaseURL         string
	RequestTimeout        time.Duration
	UseFallbackOnly       bool
	FallbackDatasetPath   string
	CircuitBreakerEnabled bool

	HTTPAddr        string
	APIAddr         string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Assessment publishing.
	KafkaBrokers    []string
	KafkaTopic      string
	PublishInterval time.Duration
}

// PublisherEnabled reports whether a Kafka sink is configured.
func (c *Config) PublisherEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// LoadDotEnv loads variables from files (default ".env") without overriding
// the real environment. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	timeoutMS, err := parsePositiveInt("REQUEST_TIMEOUT_MS", 10000)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	publishInterval, err := parseDuration("PUBLISH_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}

	useFallbackOnly, err := parseBool("USE_FALLBACK_ONLY", false)
	if err != nil {
		return nil, err
	}

	breaker, err := parseBool("CIRCUIT_BREAKER_ENABLED", false)
	if err != nil {
		return nil, err
	}

	// An explicitly empty base URL means no backend is configured.
	baseURL, set := os.LookupEnv("REMOTE_BASE_URL")
	if !set {
		baseURL = "http://localhost:8080/api"
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		useFallbackOnly = true
	}

	cfg := &Config{
		RemoteBaseURL:         baseURL,
		RequestTimeout:        time.Duration(timeoutMS) * time.Millisecond,
		UseFallbackOnly:       useFallbackOnly,
		FallbackDatasetPath:   os.Getenv("FALLBACK_DATASET_PATH"),
		CircuitBreakerEnabled: breaker,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		APIAddr:         envOrDefault("API_ADDR", ":8081"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:    parseList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      envOrDefault("KAFKA_TOPIC", "route-risk-assessments"),
		PublishInterval: publishInterval,
	}

	if !cfg.UseFallbackOnly && !strings.HasPrefix(cfg.RemoteBaseURL, "http://") && !strings.HasPrefix(cfg.RemoteBaseURL, "https://") {
		return nil, errors.New("REMOTE_BASE_URL must be an http(s) URL")
	}
	if cfg.PublisherEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.HTTPAddr == cfg.APIAddr {
		return nil, errors.New("HTTP_ADDR and API_ADDR must differ")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
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
		return false, fmt.Errorf("invalid %s: must be true or false", key)
	}
	return b, nil
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
