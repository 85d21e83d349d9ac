package config

import "time"

// Backend describes how to reach the recording service.
type Backend struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	AuthToken string `yaml:"auth_token,omitempty" mapstructure:"auth_token"`
}

// Poll controls the status synchronization loop.
type Poll struct {
	IntervalMs int `yaml:"interval_ms" mapstructure:"interval_ms"`
}

// Interval returns the poll interval as a duration.
func (p Poll) Interval() time.Duration {
	return time.Duration(p.IntervalMs) * time.Millisecond
}

// Report selects which heading markers the report is split on.
type Report struct {
	Markers string `yaml:"markers" mapstructure:"markers"`
}

// Panel configures the local browser panel.
type Panel struct {
	Port         int    `yaml:"port" mapstructure:"port"`
	PasswordHash string `yaml:"password_hash,omitempty" mapstructure:"password_hash"`
}

// Log configures the logger.
type Log struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file,omitempty" mapstructure:"file"`
}

// Config represents the .recpanel/config.yaml file.
type Config struct {
	Backend Backend `yaml:"backend" mapstructure:"backend"`
	Poll    Poll    `yaml:"poll" mapstructure:"poll"`
	Report  Report  `yaml:"report" mapstructure:"report"`
	Panel   Panel   `yaml:"panel" mapstructure:"panel"`
	Log     Log     `yaml:"log" mapstructure:"log"`
}

// Report marker set names.
const (
	MarkersPlain     = "plain"
	MarkersDecorated = "decorated"
)
