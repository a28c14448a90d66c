package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/jamesainslie/crcsum/pkg/crcsum/checksum"
	"github.com/jamesainslie/crcsum/pkg/crcsum/logging"
	"github.com/jamesainslie/crcsum/pkg/crcsum/types"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level        string            `mapstructure:"level" yaml:"level"`
	ConsoleLevel string            `mapstructure:"console_level" yaml:"console_level"`
	Path         string            `mapstructure:"path" yaml:"path"`
	Components   map[string]string `mapstructure:"components" yaml:"components,omitempty"`
}

// Config represents the application configuration.
type Config struct {
	Workers   int           `mapstructure:"workers" yaml:"workers"`
	Algorithm string        `mapstructure:"algorithm" yaml:"algorithm"`
	Display   string        `mapstructure:"display" yaml:"display"`
	Exclude   []string      `mapstructure:"exclude" yaml:"exclude"`
	Logging   LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Workers:   DefaultWorkers,
		Algorithm: DefaultAlgorithm,
		Display:   DefaultDisplay,
		Exclude:   append([]string{}, DefaultExclusions...),
		Logging: LoggingConfig{
			Level:        DefaultLogLevel,
			ConsoleLevel: DefaultConsoleLevel,
			Path:         DefaultLogPath(),
		},
	}
}

// Validate checks field values that the engine cannot recover from.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}
	if _, err := checksum.ParseAlgorithm(c.Algorithm); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := types.ParseDisplayMode(c.Display); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %w", ErrInvalidConfig, err)
	}
	if c.Logging.ConsoleLevel != "" {
		if _, err := logging.ParseLevel(c.Logging.ConsoleLevel); err != nil {
			return fmt.Errorf("%w: logging.console_level: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// NewViper returns a viper instance with crcsum's defaults, search paths and
// environment binding. If cfgFile is non-empty it is used instead of searching.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/crcsum/config.yaml
//   - $HOME/.config/crcsum/config.yaml
//
// Environment variables are prefixed with CRCSUM_ (e.g., CRCSUM_WORKERS).
func NewViper(cfgFile string) *viper.Viper {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			v.AddConfigPath(filepath.Join(xdgConfigHome, appName))
		}
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", appName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("workers", d.Workers)
	v.SetDefault("algorithm", d.Algorithm)
	v.SetDefault("display", d.Display)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.console_level", d.Logging.ConsoleLevel)
	v.SetDefault("logging.path", d.Logging.Path)
	v.SetDefault("logging.components", map[string]string{})

	return v
}

// Read reads the config file known to v (a missing file is fine), decodes
// the merged settings and validates them.
func Read(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Logging.Path != "" {
		expanded, err := ExpandPath(cfg.Logging.Path)
		if err != nil {
			return nil, err
		}
		cfg.Logging.Path = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// YAML renders the configuration as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", appName), nil
}

// ConfigPath returns the path of the default config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// StateDir returns $XDG_STATE_HOME/crcsum, the directory for log files.
func StateDir() string {
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return filepath.Join(xdgStateHome, appName)
	}
	return filepath.Join(xdg.StateHome, appName)
}

// DefaultLogPath returns the log file used when logging.path is not configured.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), logFileName)
}

const defaultHeader = `# crcsum configuration
#
# workers: size of the checksum worker pool (0 = one per CPU)
# algorithm: crc32 (IEEE) or crc32c (Castagnoli)
# display: canonical (absolute paths) or local (paths as discovered)
# exclude: glob patterns skipped during directory scans
# logging.path: log file; set to "" to disable file logging

`

// WriteDefault writes a default config file if none exists and returns its path.
// An existing file is left untouched.
func WriteDefault() (string, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	body, err := Defaults().YAML()
	if err != nil {
		return "", err
	}

	content := defaultHeader + string(body)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}

	return configPath, nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
