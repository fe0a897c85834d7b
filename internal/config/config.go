// Package config provides configuration management for infragraph.
//
// Config file locations (priority order):
//  1. $INFRAGRAPH_CONFIG
//  2. ./infragraph.yaml
//  3. $XDG_CONFIG_HOME/infragraph/config.yaml
//  4. ~/.config/infragraph/config.yaml
//  5. /etc/infragraph/config.yaml
//
// Command-line flags override values loaded from the file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultStorePath       = "rag_output/rag_data.json"
	DefaultBackendProtocol = "http"
	DefaultReportLimit     = 20
	DefaultOrphanSample    = 5
	DefaultDebounce        = 2 * time.Second
	DefaultListen          = ":9310"
)

// DefaultLoopbackHosts are backend addresses that terminate on the proxy host
var DefaultLoopbackHosts = []string{"localhost", "127.0.0.1", "::1"}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath
	}
	if len(c.Inference.LoopbackHosts) == 0 {
		c.Inference.LoopbackHosts = append([]string(nil), DefaultLoopbackHosts...)
	}
	if c.Inference.DefaultBackendProtocol == "" {
		c.Inference.DefaultBackendProtocol = DefaultBackendProtocol
	}
	if c.Validation.ReportLimit <= 0 {
		c.Validation.ReportLimit = DefaultReportLimit
	}
	if c.Validation.OrphanSample <= 0 {
		c.Validation.OrphanSample = DefaultOrphanSample
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = Duration(DefaultDebounce)
	}
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
}

// Validate rejects settings that cannot work
func (c *Config) Validate() error {
	switch strings.ToLower(c.Store.Format) {
	case "", "json", "yaml", "yml", "sqlite":
	default:
		return fmt.Errorf("store.format %q must be json, yaml or sqlite", c.Store.Format)
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	format := c.Store.Format
	if format == "" {
		format = "auto"
	}
	summary := fmt.Sprintf("Store: %s (%s)\n", c.Store.Path, format)
	summary += fmt.Sprintf("Loopback hosts: %s, default protocol: %s\n",
		strings.Join(c.Inference.LoopbackHosts, ", "), c.Inference.DefaultBackendProtocol)
	summary += fmt.Sprintf("Report limit: %d, watch debounce: %s, listen: %s",
		c.Validation.ReportLimit, c.Watch.Debounce.Duration(), c.Server.Listen)
	return summary
}
