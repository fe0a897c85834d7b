package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version    int              `yaml:"version"`
	Store      StoreConfig      `yaml:"store"`
	Inference  InferenceConfig  `yaml:"inference"`
	Validation ValidationConfig `yaml:"validation"`
	Watch      WatchConfig      `yaml:"watch"`
	Server     ServerConfig     `yaml:"server"`
}

// StoreConfig locates the document store
type StoreConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format,omitempty"` // json, yaml or sqlite; inferred from the extension when empty
}

// InferenceConfig tunes relationship inference
type InferenceConfig struct {
	LoopbackHosts          []string `yaml:"loopback_hosts,omitempty"`
	DefaultBackendProtocol string   `yaml:"default_backend_protocol,omitempty"`
	Verbose                bool     `yaml:"verbose,omitempty"`
}

// ValidationConfig tunes validation reports
type ValidationConfig struct {
	ReportLimit  int `yaml:"report_limit,omitempty"`
	OrphanSample int `yaml:"orphan_sample,omitempty"`
}

// WatchConfig holds store watcher settings
type WatchConfig struct {
	Debounce Duration `yaml:"debounce,omitempty"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Listen string `yaml:"listen,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
