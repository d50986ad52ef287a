// Package config loads the service configuration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gateward/go-core/internal/cache"
	"github.com/gateward/go-core/internal/logging"
	"github.com/gateward/go-core/internal/tokenx"
)

// Config is the top-level service configuration
type Config struct {
	// PolicyFile is the permission-tables document loaded at startup
	PolicyFile string `yaml:"policy_file"`

	Server  ServerConfig      `yaml:"server"`
	Redis   cache.RedisConfig `yaml:"redis"`
	Token   tokenx.Config     `yaml:"token"`
	Logging logging.Config    `yaml:"logging"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the configuration defaults
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Redis:   *cache.DefaultRedisConfig(),
		Token:   tokenx.DefaultConfig(),
		Logging: logging.DefaultConfig(),
	}
}

// Load reads the configuration file over the defaults
func Load(path string) (Config, error) {
	cfg := Default()

	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for validity
func (c *Config) Validate() error {
	if c.PolicyFile == "" {
		return fmt.Errorf("policy_file is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := c.Token.Validate(); err != nil {
		return fmt.Errorf("token: %w", err)
	}
	return nil
}
