package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/justin4957/seclab-dashboard/internal/enrich"
)

// Environment variables that override the YAML file
const (
	EnvDataPath   = "SECLAB_DATA_PATH"
	EnvListenHost = "SECLAB_HOST"
	EnvListenPort = "SECLAB_PORT"
	EnvLogLevel   = "SECLAB_LOG_LEVEL"
	EnvSeed       = "SECLAB_ENRICH_SEED"
)

// Config represents the application configuration
type Config struct {
	Data            DataConfig       `yaml:"data"`
	Enrichment      EnrichmentConfig `yaml:"enrichment"`
	DashboardConfig DashboardConfig  `yaml:"dashboard"`
	Logging         LoggingConfig    `yaml:"logging"`
}

// DataConfig locates the event file
type DataConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // "csv" or "tsv"
	Watch  bool   `yaml:"watch"`  // reload when the file changes
}

// EnrichmentConfig controls synthetic country assignment
type EnrichmentConfig struct {
	Seed    uint64                 `yaml:"seed"` // 0 seeds from the clock
	Weights []enrich.CountryWeight `yaml:"weights"`
}

// DashboardConfig contains web dashboard settings
type DashboardConfig struct {
	Port           int           `yaml:"port"`
	Host           string        `yaml:"host"`
	PreviewRows    int           `yaml:"preview_rows"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Environment string `yaml:"environment"` // "production" or "development"
	Level       string `yaml:"level"`
	Format      string `yaml:"format"` // "json" or "console"
}

// LoadConfig loads configuration from a YAML file. A missing file yields the
// default configuration; a malformed one is an error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	// keys absent from the file keep their default, booleans included
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	applyDefaults(cfg)

	return cfg, nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Path:   "attack_log_dataset.csv",
			Format: "csv",
			Watch:  true,
		},
		Enrichment: EnrichmentConfig{
			Seed:    0,
			Weights: append([]enrich.CountryWeight(nil), enrich.DefaultWeights...),
		},
		DashboardConfig: DashboardConfig{
			Port:           8080,
			Host:           "localhost",
			PreviewRows:    10,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			AllowedOrigins: []string{"http://localhost:8080"},
		},
		Logging: LoggingConfig{
			Environment: "development",
			Level:       "info",
			Format:      "console",
		},
	}
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()

	if cfg.Data.Path == "" {
		cfg.Data.Path = def.Data.Path
	}
	if cfg.Data.Format == "" {
		cfg.Data.Format = def.Data.Format
	}
	if len(cfg.Enrichment.Weights) == 0 {
		cfg.Enrichment.Weights = def.Enrichment.Weights
	}
	if cfg.DashboardConfig.Port == 0 {
		cfg.DashboardConfig.Port = def.DashboardConfig.Port
	}
	if cfg.DashboardConfig.Host == "" {
		cfg.DashboardConfig.Host = def.DashboardConfig.Host
	}
	if cfg.DashboardConfig.PreviewRows <= 0 {
		cfg.DashboardConfig.PreviewRows = def.DashboardConfig.PreviewRows
	}
	if cfg.DashboardConfig.ReadTimeout <= 0 {
		cfg.DashboardConfig.ReadTimeout = def.DashboardConfig.ReadTimeout
	}
	if cfg.DashboardConfig.WriteTimeout <= 0 {
		cfg.DashboardConfig.WriteTimeout = def.DashboardConfig.WriteTimeout
	}
	if cfg.DashboardConfig.IdleTimeout <= 0 {
		cfg.DashboardConfig.IdleTimeout = def.DashboardConfig.IdleTimeout
	}
	if len(cfg.DashboardConfig.AllowedOrigins) == 0 {
		cfg.DashboardConfig.AllowedOrigins = def.DashboardConfig.AllowedOrigins
	}
	if cfg.Logging.Environment == "" {
		cfg.Logging.Environment = def.Logging.Environment
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
}

// ApplyEnv loads envFile (if present) into the process environment and
// applies the SECLAB_* overrides
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if v := os.Getenv(EnvDataPath); v != "" {
		c.Data.Path = v
	}
	if v := os.Getenv(EnvListenHost); v != "" {
		c.DashboardConfig.Host = v
	}
	if v := os.Getenv(EnvListenPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvListenPort, err)
		}
		c.DashboardConfig.Port = port
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Enrichment.Seed = seed
	}
	return nil
}

// Validate rejects settings the dashboard cannot run with
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return errors.New("data.path is required")
	}
	switch c.Data.Format {
	case "csv", "tsv":
	default:
		return fmt.Errorf("data.format must be csv or tsv, got %q", c.Data.Format)
	}
	if c.DashboardConfig.Port <= 0 || c.DashboardConfig.Port > 65535 {
		return fmt.Errorf("dashboard.port out of range: %d", c.DashboardConfig.Port)
	}
	for _, w := range c.Enrichment.Weights {
		if w.Weight < 0 {
			return fmt.Errorf("enrichment weight for %s is negative", w.Code)
		}
	}
	return nil
}

// Addr returns the listen address of the dashboard
func (d DashboardConfig) Addr() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}
