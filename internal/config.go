package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the optional on-disk configuration. Every field has a
// working default, so the file itself is optional.
type FileConfig struct {
	DatabasePath        string `yaml:"database_path,omitempty"`
	SessionsRoot        string `yaml:"sessions_root,omitempty"`
	ExcerptLength       int    `yaml:"excerpt_length,omitempty"`
	MinRecordSize       int    `yaml:"min_record_size,omitempty"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds,omitempty"`
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "session-feed", "config.yaml")
}

// LoadConfig reads the YAML config at path; an empty path means the
// default location. A missing file yields an empty config, not an
// error. Detected platform paths fill any field left empty.
func LoadConfig(path string) (*FileConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := &FileConfig{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *FileConfig) applyDefaults() {
	if c.DatabasePath == "" || c.SessionsRoot == "" {
		if paths, err := DetectStoragePaths(); err == nil {
			if c.DatabasePath == "" {
				c.DatabasePath = paths.GetGlobalStorageDBPath()
			}
			if c.SessionsRoot == "" {
				c.SessionsRoot = paths.SessionsRoot
			}
		}
	}
	if c.PollIntervalSeconds <= 0 {
		c.PollIntervalSeconds = 15
	}
}

// ReaderConfig converts the file config into a Reader Config.
func (c *FileConfig) ReaderConfig() Config {
	return Config{
		DatabasePath:  c.DatabasePath,
		SessionsRoot:  c.SessionsRoot,
		ExcerptLength: c.ExcerptLength,
		MinRecordSize: c.MinRecordSize,
	}
}
