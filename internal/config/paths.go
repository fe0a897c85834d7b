package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "INFRAGRAPH_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "infragraph.yaml"
	// ConfigDirName is the directory under XDG and /etc
	ConfigDirName = "infragraph"

	userConfigFile = "config.yaml"
)

// SearchPaths lists candidate config files, highest priority first.
// Entries depend on the environment: $INFRAGRAPH_CONFIG and the XDG and
// home locations are only listed when the variables are set.
func SearchPaths() []string {
	var paths []string
	if explicit := os.Getenv(EnvConfigPath); explicit != "" {
		paths = append(paths, explicit)
	}
	paths = append(paths, ConfigFileName)
	if dir := userConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, userConfigFile))
	}
	if home := os.Getenv("HOME"); home != "" && os.Getenv("XDG_CONFIG_HOME") != "" {
		// ~/.config is still searched when XDG_CONFIG_HOME points elsewhere
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, userConfigFile))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, userConfigFile))
}

// FindConfigPath returns the first existing file from SearchPaths, or ""
func FindConfigPath() string {
	for _, path := range SearchPaths() {
		if !fileExists(path) {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// DefaultConfigPath is where `infragraph config init` writes a new file:
// the per-user config directory, or the working directory without one
func DefaultConfigPath() string {
	if dir := userConfigDir(); dir != "" {
		return filepath.Join(dir, userConfigFile)
	}
	return ConfigFileName
}

// userConfigDir resolves $XDG_CONFIG_HOME/infragraph, falling back to
// ~/.config/infragraph
func userConfigDir() string {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, ConfigDirName)
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", ConfigDirName)
	}
	return ""
}

// EnsureConfigDir creates the parent directory of configPath
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
