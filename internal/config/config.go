// Package config loads the optional pgsession.yaml project configuration.
//
// The file supplies connection defaults (host, port, auth method, cloud
// provider settings) plus pool and retry tuning. Command-line flags and
// environment variables always take precedence over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/pgsession/pkg/pgsession"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

// PoolConfig tunes the connection pool. Zero values fall back to the
// pgsession defaults.
type PoolConfig struct {
	Size        int32  `yaml:"size"`
	MaxOverflow int32  `yaml:"max_overflow"`
	Timeout     string `yaml:"timeout"`
}

// RetryConfig tunes the transient-error retry budget. Zero values fall back
// to the pgsession defaults.
type RetryConfig struct {
	MaxRetries int    `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
	MaxDelay   string `yaml:"max_delay"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Pool       PoolConfig       `yaml:"pool"`
	Retry      RetryConfig      `yaml:"retry"`
}

const ConfigFileName = "pgsession.yaml"

func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SessionConfig builds a pgsession.Config for the given connection URL,
// applying any pool and retry tuning from the project file. Duration fields
// use Go duration syntax ("500ms", "2s").
func (c *ProjectConfig) SessionConfig(url string) (pgsession.Config, error) {
	cfg := pgsession.DefaultConfig(url)

	if c.Pool.Size > 0 {
		cfg.PoolSize = c.Pool.Size
	}
	if c.Pool.MaxOverflow > 0 {
		cfg.MaxOverflow = c.Pool.MaxOverflow
	}
	if c.Pool.Timeout != "" {
		d, err := time.ParseDuration(c.Pool.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("invalid pool.timeout %q: %w", c.Pool.Timeout, err)
		}
		cfg.PoolTimeout = d
	}

	if c.Retry.MaxRetries > 0 {
		cfg.MaxRetries = c.Retry.MaxRetries
	}
	if c.Retry.BaseDelay != "" {
		d, err := time.ParseDuration(c.Retry.BaseDelay)
		if err != nil {
			return cfg, fmt.Errorf("invalid retry.base_delay %q: %w", c.Retry.BaseDelay, err)
		}
		cfg.RetryBaseDelay = d
	}
	if c.Retry.MaxDelay != "" {
		d, err := time.ParseDuration(c.Retry.MaxDelay)
		if err != nil {
			return cfg, fmt.Errorf("invalid retry.max_delay %q: %w", c.Retry.MaxDelay, err)
		}
		cfg.MaxRetryDelay = d
	}

	return cfg, nil
}
