package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	General      GeneralConfig      `mapstructure:"general"`
	Server       ServerConfig       `mapstructure:"server"`
	Assistant    AssistantConfig    `mapstructure:"assistant"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Registry     RegistryConfig     `mapstructure:"registry"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server and auth settings
type ServerConfig struct {
	Address   string `mapstructure:"address"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// AssistantConfig contains the remote assistant service connection settings
type AssistantConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	AgentID      string        `mapstructure:"agent_id"`
	Timeout      time.Duration `mapstructure:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	PollLimit    int           `mapstructure:"poll_limit"`
	MaxBodyBytes int           `mapstructure:"max_body_bytes"`
}

// OrchestratorConfig contains answer-generation settings
type OrchestratorConfig struct {
	MaxRetries          int  `mapstructure:"max_retries"`
	QualityGateDisabled bool `mapstructure:"quality_gate_disabled"`
	GroundingLimit      int  `mapstructure:"grounding_limit"`
}

// RegistryConfig contains conversation registry settings
type RegistryConfig struct {
	Backend   string        `mapstructure:"backend"` // memory or redis
	TTL       time.Duration `mapstructure:"ttl"`     // 0 = no expiry
	SweepCron string        `mapstructure:"sweep_cron"`
}

// StorageConfig contains storage and persistence settings
type StorageConfig struct {
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	PeriodicLogs bool `mapstructure:"periodic_logs"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	viper.SetConfigName("shelfside")
	viper.SetConfigType("json")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("SHELFSIDE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Config file is optional; defaults plus env cover local runs
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	overrideFromEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.log_level", "info")

	viper.SetDefault("server.address", ":8080")

	viper.SetDefault("assistant.timeout", "60s")
	viper.SetDefault("assistant.poll_interval", "500ms")
	viper.SetDefault("assistant.poll_limit", 60)
	viper.SetDefault("assistant.max_body_bytes", 31500)

	viper.SetDefault("orchestrator.max_retries", 2)
	viper.SetDefault("orchestrator.quality_gate_disabled", false)
	viper.SetDefault("orchestrator.grounding_limit", 20)

	viper.SetDefault("registry.backend", "memory")
	viper.SetDefault("registry.ttl", "0")
	viper.SetDefault("registry.sweep_cron", "0 * * * *")

	viper.SetDefault("storage.redis.host", "localhost")
	viper.SetDefault("storage.redis.port", "6379")
	viper.SetDefault("storage.redis.db", 0)
	viper.SetDefault("storage.redis.timeout", "5s")
	viper.SetDefault("storage.postgres.host", "")
	viper.SetDefault("storage.postgres.port", "5432")
	viper.SetDefault("storage.postgres.sslmode", "disable")
	viper.SetDefault("storage.postgres.timeout", "5s")

	viper.SetDefault("telemetry.enabled", true)
	viper.SetDefault("telemetry.periodic_logs", false)
}

// overrideFromEnv overrides configuration with environment variables for sensitive data
func overrideFromEnv() {
	if apiKey := os.Getenv("ASSISTANT_API_KEY"); apiKey != "" {
		viper.Set("assistant.api_key", apiKey)
	}
	if secret := os.Getenv("SHELFSIDE_JWT_SECRET"); secret != "" {
		viper.Set("server.jwt_secret", secret)
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		viper.Set("storage.postgres.url", dsn)
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		viper.Set("storage.redis.password", pass)
	}
}

// validateConfig validates the loaded configuration
func validateConfig(cfg *Config) error {
	if cfg.Assistant.PollLimit <= 0 {
		return fmt.Errorf("assistant.poll_limit must be positive")
	}
	if cfg.Assistant.PollInterval <= 0 {
		return fmt.Errorf("assistant.poll_interval must be positive")
	}
	if cfg.Orchestrator.MaxRetries < 0 {
		return fmt.Errorf("orchestrator.max_retries must not be negative")
	}
	switch cfg.Registry.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("registry.backend must be memory or redis, got %q", cfg.Registry.Backend)
	}
	return nil
}

// PostgresDSN builds a DSN from either the url field or discrete settings.
func (c PostgresConfig) DSN() (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}
	if c.Host == "" || c.DBName == "" {
		return "", fmt.Errorf("postgres not configured (storage.postgres.host/dbname or url)")
	}
	port := c.Port
	if port == "" {
		port = "5432"
	}
	ssl := c.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, port, c.DBName, ssl), nil
}
