package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Renderers supported by the demo.
const (
	RendererTerminal = "terminal"
	RendererHeadless = "headless"
)

// Catalog sources.
const (
	CatalogEmbedded = "embedded"
	CatalogFile     = "file"
	CatalogPostgres = "postgres"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// FXDemo holds all configuration for the effect demo.
type FXDemo struct {
	// Logging
	LogLevel string `yaml:"log_level" env:"FXPOOL_LOG_LEVEL"`
	LogFile  string `yaml:"log_file" env:"FXPOOL_LOG_FILE"` // used when the terminal owns stdout

	// Frame loop
	TickRate      int           `yaml:"tick_rate" env:"FXPOOL_TICK_RATE"` // frames per second
	RunDuration   time.Duration `yaml:"run_duration" env:"FXPOOL_RUN_DURATION"` // 0 = until interrupted
	StatsInterval time.Duration `yaml:"stats_interval" env:"FXPOOL_STATS_INTERVAL"`

	// Pools
	InitialPoolSize int      `yaml:"initial_pool_size" env:"FXPOOL_INITIAL_POOL_SIZE"`
	Prewarm         []string `yaml:"prewarm" env:"FXPOOL_PREWARM" envSeparator:","`

	Renderer string `yaml:"renderer" env:"FXPOOL_RENDERER"`

	// Catalog
	CatalogSource string `yaml:"catalog_source" env:"FXPOOL_CATALOG_SOURCE"`
	CatalogPath   string `yaml:"catalog_path" env:"FXPOOL_CATALOG_PATH"`
	SeedCatalog   bool   `yaml:"seed_catalog" env:"FXPOOL_SEED_CATALOG"` // write the embedded catalog to postgres on start

	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"FXPOOL_DB_HOST"`
	Port     int    `yaml:"port" env:"FXPOOL_DB_PORT"`
	User     string `yaml:"user" env:"FXPOOL_DB_USER"`
	Password string `yaml:"password" env:"FXPOOL_DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"FXPOOL_DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"FXPOOL_DB_SSLMODE"`

	// URL overrides the fields above when set.
	URL string `yaml:"url" env:"FXPOOL_DATABASE_DSN"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultFXDemo returns FXDemo config with sensible defaults.
func DefaultFXDemo() FXDemo {
	return FXDemo{
		LogLevel:        "info",
		LogFile:         "fxdemo.log",
		TickRate:        60,
		StatsInterval:   5 * time.Second,
		InitialPoolSize: 10,
		Prewarm:         []string{"muzzle_flash", "hit_spark", "explosion_small"},
		Renderer:        RendererTerminal,
		CatalogSource:   CatalogEmbedded,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "fxpool",
			Password: "fxpool",
			DBName:   "fxpool",
			SSLMode:  "disable",
		},
	}
}

// LoadFXDemo loads demo config from a YAML file, then applies FXPOOL_*
// environment overrides. If the file doesn't exist, defaults are used.
func LoadFXDemo(path string) (FXDemo, error) {
	cfg := DefaultFXDemo()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// FrameInterval returns the duration of one frame at TickRate.
func (c FXDemo) FrameInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.TickRate)
}

// Validate reports the first invalid setting.
func (c FXDemo) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.TickRate <= 0 || c.TickRate > 1000 {
		return fmt.Errorf("%w: tick_rate %d out of range 1..1000", ErrInvalidConfig, c.TickRate)
	}
	if c.InitialPoolSize < 0 {
		return fmt.Errorf("%w: initial_pool_size %d is negative", ErrInvalidConfig, c.InitialPoolSize)
	}
	if c.RunDuration < 0 {
		return fmt.Errorf("%w: run_duration %s is negative", ErrInvalidConfig, c.RunDuration)
	}
	if c.StatsInterval < 0 {
		return fmt.Errorf("%w: stats_interval %s is negative", ErrInvalidConfig, c.StatsInterval)
	}
	switch c.Renderer {
	case RendererTerminal, RendererHeadless:
	default:
		return fmt.Errorf("%w: renderer %q", ErrInvalidConfig, c.Renderer)
	}
	switch c.CatalogSource {
	case CatalogEmbedded, CatalogPostgres:
	case CatalogFile:
		if c.CatalogPath == "" {
			return fmt.Errorf("%w: catalog_source file requires catalog_path", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: catalog_source %q", ErrInvalidConfig, c.CatalogSource)
	}
	return nil
}

// NeedsDatabase reports whether the demo has to connect to PostgreSQL.
func (c FXDemo) NeedsDatabase() bool {
	return c.CatalogSource == CatalogPostgres || c.SeedCatalog
}
