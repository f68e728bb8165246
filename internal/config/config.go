package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Refdata   RefdataConfig   `yaml:"refdata"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// ProviderConfig holds one upstream provider's settings
type ProviderConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// ProvidersConfig groups the upstream providers
type ProvidersConfig struct {
	Stats     ProviderConfig `yaml:"stats"`
	Geocoding ProviderConfig `yaml:"geocoding"`
	Places    ProviderConfig `yaml:"places"`
}

// RefdataConfig holds reference data store settings
type RefdataConfig struct {
	StorePath            string `yaml:"store_path"`
	IncomeCSVPath        string `yaml:"income_csv_path"`
	FuturePopulationPath string `yaml:"future_population_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig builds the configuration from an optional YAML file (path in
// CONFIG_FILE) with environment variable overrides on top.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Providers: ProvidersConfig{
			Stats:     ProviderConfig{Timeout: 30 * time.Second},
			Geocoding: ProviderConfig{Timeout: 10 * time.Second},
			Places:    ProviderConfig{Timeout: 15 * time.Second},
		},
		Refdata: RefdataConfig{
			StorePath: "refdata.db",
		},
		Logging: LoggingConfig{Level: "info"},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Host, "SERVER_HOST")
	setInt(&cfg.Server.Port, "SERVER_PORT")

	setString(&cfg.Providers.Stats.BaseURL, "STATS_API_URL")
	setString(&cfg.Providers.Stats.APIKey, "STATS_API_KEY")
	setString(&cfg.Providers.Geocoding.BaseURL, "GEOCODING_API_URL")
	setString(&cfg.Providers.Geocoding.APIKey, "GEOCODING_API_KEY")
	setString(&cfg.Providers.Places.BaseURL, "PLACES_API_URL")
	setString(&cfg.Providers.Places.APIKey, "PLACES_API_KEY")

	setString(&cfg.Refdata.StorePath, "REFDATA_STORE_PATH")
	setString(&cfg.Refdata.IncomeCSVPath, "REFDATA_INCOME_CSV")
	setString(&cfg.Refdata.FuturePopulationPath, "REFDATA_FUTURE_POPULATION")

	setString(&cfg.Logging.Level, "LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Validate checks the configuration for obvious mistakes
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Refdata.StorePath == "" {
		return fmt.Errorf("refdata store path must not be empty")
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
