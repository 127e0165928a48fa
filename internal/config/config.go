package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/voidfinder/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Noise  NoiseConfig  `yaml:"noise"`
	Scan   ScanConfig   `yaml:"scan"`
	Trash  TrashConfig  `yaml:"trash"`
	Log    LogConfig    `yaml:"log"`
	SSH    SSHConfig    `yaml:"ssh"`
	Export ExportConfig `yaml:"export"`
}

// NoiseConfig lists the file names that do not make a folder non-empty.
type NoiseConfig struct {
	Names []string `yaml:"names"`
}

// ScanConfig tunes the walker.
type ScanConfig struct {
	ProgressEvery int  `yaml:"progress_every"` // directories between progress updates
	PreCount      bool `yaml:"precount"`       // count directories first for a determinate bar
}

// TrashConfig selects where relocated folders go.
type TrashConfig struct {
	Dir string `yaml:"dir"` // empty means the platform trash
}

// LogConfig controls the diagnostic log.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// SSHConfig holds remote scan settings.
type SSHConfig struct {
	Port        int           `yaml:"port"`
	Batch       bool          `yaml:"batch"`
	Timeout     time.Duration `yaml:"timeout"`
	ScanTimeout time.Duration `yaml:"scan_timeout"`
}

// ExportConfig holds the default export target.
type ExportConfig struct {
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Noise: NoiseConfig{Names: []string{".DS_Store", "Thumbs.db", "desktop.ini"}},
		Scan:  ScanConfig{ProgressEvery: 500, PreCount: true},
		Log:   LogConfig{Level: "info"},
		SSH:   SSHConfig{Port: 22, Timeout: 15 * time.Second},
	}
}

// Load loads configuration from a file. A missing file yields the defaults;
// keys absent from the file keep their default values.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to a file
func Save(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	for _, name := range c.Noise.Names {
		if strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("noise name must be a plain file name: %q", name)
		}
	}

	if c.Scan.ProgressEvery < 0 {
		return fmt.Errorf("scan.progress_every must be >= 0")
	}

	if c.Trash.Dir != "" && !filepath.IsAbs(c.Trash.Dir) {
		return fmt.Errorf("trash.dir must be absolute: %s", c.Trash.Dir)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}

	if c.SSH.Port < 1 || c.SSH.Port > 65535 {
		return fmt.Errorf("ssh.port must be between 1 and 65535")
	}
	if c.SSH.Timeout < 0 || c.SSH.ScanTimeout < 0 {
		return fmt.Errorf("ssh timeouts must be >= 0")
	}

	return nil
}

// Path returns the config file location.
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "voidfinder", "config.yaml"), nil
}

// EnsureExists creates a default config file if it doesn't exist
func EnsureExists() (string, error) {
	configPath, err := Path()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(Default(), configPath); err != nil {
			return "", err
		}
	}

	return configPath, nil
}
