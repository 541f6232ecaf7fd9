package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/twingraph-backend/internal/platform/envutil"
)

const (
	StoreBackendNeo4j  = "neo4j"
	StoreBackendMemory = "memory"
)

var ErrMissingPassword = errors.New("NEO4J_PASSWORD is required")

type Config struct {
	App       AppConfig       `yaml:"app"`
	HTTP      HTTPConfig      `yaml:"http"`
	Neo4j     Neo4jConfig     `yaml:"neo4j"`
	Redis     RedisConfig     `yaml:"redis"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type AppConfig struct {
	Name         string `yaml:"name"`
	Environment  string `yaml:"environment"`
	Version      string `yaml:"version"`
	LogMode      string `yaml:"log_mode"`
	LogLevel     string `yaml:"log_level"`
	LogRedaction bool   `yaml:"log_redaction"`
	StoreBackend string `yaml:"store_backend"`

	// StoreHealthInterval is how often the server logs store reachability; 0 disables it.
	StoreHealthInterval time.Duration `yaml:"store_health_interval"`
}

type HTTPConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxRequestBytes int64         `yaml:"max_request_bytes"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type Neo4jConfig struct {
	URI         string        `yaml:"uri"`
	User        string        `yaml:"user"`
	Password    string        `yaml:"-"`
	Database    string        `yaml:"database"`
	MaxPoolSize int           `yaml:"max_pool_size"`
	Timeout     time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"-"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"impact_cache_ttl"`
	Prefix   string        `yaml:"prefix"`
}

type TelemetryConfig struct {
	TracingEnabled bool    `yaml:"tracing_enabled"`
	SampleRatio    float64 `yaml:"sample_ratio"`
	OTLPEndpoint   string  `yaml:"otlp_endpoint"`
	OTLPInsecure   bool    `yaml:"otlp_insecure"`
	MetricsEnabled bool    `yaml:"metrics_enabled"`
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:         "twingraph",
			Environment:  "development",
			Version:      "0.1.0",
			LogMode:      "development",
			LogLevel:     "info",
			LogRedaction: true,
			StoreBackend: StoreBackendNeo4j,

			StoreHealthInterval: 30 * time.Second,
		},
		HTTP: HTTPConfig{
			Port:            "8000",
			ShutdownTimeout: 15 * time.Second,
			MaxRequestBytes: 4 << 20,
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			},
		},
		Neo4j: Neo4jConfig{
			URI:         "bolt://neo4j:7687",
			User:        "neo4j",
			MaxPoolSize: 50,
			Timeout:     10 * time.Second,
		},
		Redis: RedisConfig{
			TTL:    5 * time.Minute,
			Prefix: "twingraph",
		},
		Telemetry: TelemetryConfig{
			SampleRatio:    0.1,
			MetricsEnabled: true,
		},
	}
}

// Load builds the process configuration: defaults, then an optional .env file, then the
// optional YAML file named by TWINGRAPH_CONFIG, then environment overrides.
func Load() (*Config, error) {
	// Missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("TWINGRAPH_CONFIG")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var p envutil.Parser

	c.App.Environment = envutil.String("APP_ENV", c.App.Environment)
	c.App.Version = envutil.String("APP_VERSION", c.App.Version)
	c.App.LogMode = envutil.String("LOG_MODE", c.App.LogMode)
	c.App.LogLevel = envutil.String("LOG_LEVEL", c.App.LogLevel)
	c.App.LogRedaction = p.Bool("LOG_REDACTION_ENABLED", c.App.LogRedaction)
	c.App.StoreBackend = strings.ToLower(envutil.String("STORE_BACKEND", c.App.StoreBackend))
	c.App.StoreHealthInterval = p.Duration("STORE_HEALTH_INTERVAL", c.App.StoreHealthInterval)

	c.HTTP.Port = envutil.String("PORT", c.HTTP.Port)
	c.HTTP.ShutdownTimeout = p.Duration("HTTP_SHUTDOWN_TIMEOUT", c.HTTP.ShutdownTimeout)
	c.HTTP.MaxRequestBytes = p.Int64("HTTP_MAX_REQUEST_BYTES", c.HTTP.MaxRequestBytes)
	if origins := envutil.List("CORS_ALLOWED_ORIGINS"); len(origins) > 0 {
		c.HTTP.AllowedOrigins = origins
	}

	c.Neo4j.URI = envutil.String("NEO4J_URI", c.Neo4j.URI)
	c.Neo4j.User = envutil.String("NEO4J_USER", c.Neo4j.User)
	c.Neo4j.Password = strings.TrimSpace(os.Getenv("NEO4J_PASSWORD"))
	c.Neo4j.Database = envutil.String("NEO4J_DATABASE", c.Neo4j.Database)
	c.Neo4j.MaxPoolSize = p.Int("NEO4J_MAX_POOL_SIZE", c.Neo4j.MaxPoolSize)
	c.Neo4j.Timeout = p.Duration("NEO4J_TIMEOUT_SECONDS", c.Neo4j.Timeout)

	c.Redis.Addr = envutil.String("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = strings.TrimSpace(os.Getenv("REDIS_PASSWORD"))
	c.Redis.DB = p.Int("REDIS_DB", c.Redis.DB)
	c.Redis.TTL = p.Duration("IMPACT_CACHE_TTL", c.Redis.TTL)

	c.Telemetry.TracingEnabled = p.Bool("OTEL_ENABLED", c.Telemetry.TracingEnabled)
	c.Telemetry.SampleRatio = p.Float("OTEL_TRACES_SAMPLER_ARG", c.Telemetry.SampleRatio)
	c.Telemetry.OTLPEndpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", c.Telemetry.OTLPEndpoint)
	c.Telemetry.OTLPInsecure = p.Bool("OTEL_EXPORTER_OTLP_INSECURE", c.Telemetry.OTLPInsecure)
	c.Telemetry.MetricsEnabled = p.Bool("METRICS_ENABLED", c.Telemetry.MetricsEnabled)

	return p.Err()
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.HTTP.Port) == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.HTTP.MaxRequestBytes <= 0 {
		return fmt.Errorf("HTTP_MAX_REQUEST_BYTES must be positive")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("OTEL_TRACES_SAMPLER_ARG must be between 0 and 1, got %v", c.Telemetry.SampleRatio)
	}
	if c.App.StoreHealthInterval < 0 {
		return fmt.Errorf("STORE_HEALTH_INTERVAL must not be negative")
	}

	switch c.App.StoreBackend {
	case StoreBackendMemory:
		return nil
	case StoreBackendNeo4j:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreBackendNeo4j, StoreBackendMemory, c.App.StoreBackend)
	}

	if c.Neo4j.Password == "" {
		return ErrMissingPassword
	}
	u, err := url.Parse(c.Neo4j.URI)
	if err != nil {
		return fmt.Errorf("NEO4J_URI: %w", err)
	}
	switch u.Scheme {
	case "bolt", "bolt+s", "bolt+ssc", "neo4j", "neo4j+s", "neo4j+ssc":
	default:
		return fmt.Errorf("NEO4J_URI: unsupported scheme %q", u.Scheme)
	}
	if c.Neo4j.MaxPoolSize <= 0 {
		return fmt.Errorf("NEO4J_MAX_POOL_SIZE must be positive")
	}
	if c.Neo4j.Timeout <= 0 {
		return fmt.Errorf("NEO4J_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.HTTP.Port, ":")
}
