package config

import (
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/strataworks/lithos/internal/pipeline"
	"github.com/strataworks/lithos/pkg/database"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvLithosEnv             = "LITHOS_ENV"
	EnvLithosShutdownTimeout = "LITHOS_SHUTDOWN_TIMEOUT"
	EnvLithosVersion         = "LITHOS_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "LITHOS_DB_HOST",
	Port:            "LITHOS_DB_PORT",
	Name:            "LITHOS_DB_NAME",
	User:            "LITHOS_DB_USER",
	Password:        "LITHOS_DB_PASSWORD",
	SSLMode:         "LITHOS_DB_SSL_MODE",
	MaxOpenConns:    "LITHOS_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "LITHOS_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "LITHOS_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "LITHOS_DB_CONN_TIMEOUT",
}

// Config is the root configuration for the Lithos service.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Database        database.Config      `toml:"database"`
	API             APIConfig            `toml:"api"`
	Agent           gaconfig.AgentConfig `toml:"agent"`
	Verifier        gaconfig.AgentConfig `toml:"verifier"`
	Pipeline        pipeline.Config      `toml:"pipeline"`
	Strata          StrataConfig         `toml:"strata"`
	RegionCache     RegionCacheConfig    `toml:"region_cache"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the LITHOS_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvLithosEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.API.Merge(&overlay.API)
	c.Agent.Merge(&overlay.Agent)
	c.Verifier.Merge(&overlay.Verifier)
	MergePipeline(&c.Pipeline, &overlay.Pipeline)
	c.Strata.Merge(&overlay.Strata)
	c.RegionCache.Merge(&overlay.RegionCache)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := FinalizeAgent(&c.Agent, PrimaryAgentEnv); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := FinalizeAgent(&c.Verifier, SecondaryAgentEnv); err != nil {
		return fmt.Errorf("verifier: %w", err)
	}
	if err := FinalizePipeline(&c.Pipeline); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.Strata.Finalize(); err != nil {
		return fmt.Errorf("strata: %w", err)
	}
	if err := c.RegionCache.Finalize(); err != nil {
		return fmt.Errorf("region_cache: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvLithosShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvLithosVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvLithosEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
