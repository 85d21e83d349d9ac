package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Default values for Config.
const (
	DefaultBaseURL        = "http://localhost:8000"
	DefaultPollIntervalMs = 2000
	DefaultMarkers        = MarkersPlain
	DefaultPanelPort      = 8375
	DefaultLogLevel       = "warn"

	// DirName is the per-project configuration directory.
	DirName = ".recpanel"
	// FileName is the configuration file inside DirName.
	FileName = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. RECPANEL_BACKEND_BASE_URL.
	EnvPrefix = "RECPANEL"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Backend: Backend{BaseURL: DefaultBaseURL},
		Poll:    Poll{IntervalMs: DefaultPollIntervalMs},
		Report:  Report{Markers: DefaultMarkers},
		Panel:   Panel{Port: DefaultPanelPort},
		Log:     Log{Level: DefaultLogLevel},
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Path returns the config file location under basePath.
func Path(basePath string) string {
	return filepath.Join(basePath, DirName, FileName)
}

// LoadConfig reads .recpanel/config.yaml from the given base path.
// If the file doesn't exist, defaults are used. Environment overrides apply
// in both cases.
func LoadConfig(basePath string) (*Config, error) {
	return LoadConfigFile(Path(basePath), false)
}

// LoadConfigFile reads the config at path. When required is false a missing
// file yields the defaults; when true it is an error.
func LoadConfigFile(path string, required bool) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	} else if required {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Backend.BaseURL = strings.TrimSuffix(cfg.Backend.BaseURL, "/")

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.auth_token", "")
	v.SetDefault("poll.interval_ms", d.Poll.IntervalMs)
	v.SetDefault("report.markers", d.Report.Markers)
	v.SetDefault("panel.port", d.Panel.Port)
	v.SetDefault("panel.password_hash", "")
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", "")
}

// ValidateConfig checks that all config values are valid.
func ValidateConfig(cfg *Config) error {
	u, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil || u.Host == "" {
		return ValidationError{Field: "backend.base_url", Message: "must be an absolute URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ValidationError{Field: "backend.base_url", Message: "scheme must be http or https"}
	}
	if cfg.Poll.IntervalMs <= 0 {
		return ValidationError{Field: "poll.interval_ms", Message: "must be positive"}
	}
	switch cfg.Report.Markers {
	case MarkersPlain, MarkersDecorated:
	default:
		return ValidationError{Field: "report.markers", Message: fmt.Sprintf("must be %q or %q", MarkersPlain, MarkersDecorated)}
	}
	if cfg.Panel.Port < 0 || cfg.Panel.Port > 65535 {
		return ValidationError{Field: "panel.port", Message: "must be between 0 and 65535"}
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return ValidationError{Field: "log.level", Message: "must be one of debug, info, warn, error"}
	}
	return nil
}

// WriteConfig writes cfg as YAML to .recpanel/config.yaml under basePath,
// creating the directory. An existing file is only replaced when force is set.
func WriteConfig(basePath string, cfg *Config, force bool) (string, error) {
	path := Path(basePath)

	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
