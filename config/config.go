// Package config loads and validates the leima configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yairfalse/leima/types"
)

// Required configuration keys, checked in this order before any
// reconciliation work starts.
const (
	KeyAccessKeyID     = "aws_access_key_id"
	KeySecretAccessKey = "aws_secret_access_key"
	KeyRegions         = "regions"
	KeyTags            = "tags"
)

// Config is the root configuration structure.
type Config struct {
	AccessKeyID     string            `yaml:"aws_access_key_id"`
	SecretAccessKey string            `yaml:"aws_secret_access_key"`
	Regions         []string          `yaml:"regions"`
	Tags            map[string]string `yaml:"tags"`

	Notify  NotifyConfig  `yaml:"notify"`
	Daemon  DaemonConfig  `yaml:"daemon"`
	Journal JournalConfig `yaml:"journal"`
	History HistoryConfig `yaml:"history"`
	Policy  PolicyConfig  `yaml:"policy"`
	OTEL    OTELConfig    `yaml:"otel"`
	Log     LogConfig     `yaml:"log"`
}

// NotifyConfig holds the chat webhook settings. An empty URL disables
// notification without affecting reconciliation.
type NotifyConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	TimeoutStr string `yaml:"timeout"`
	Timeout    time.Duration
}

// DaemonConfig holds daemon loop settings.
type DaemonConfig struct {
	IntervalStr string `yaml:"interval"`
	Interval    time.Duration
	Listen      string `yaml:"listen"`
	Immediate   bool   `yaml:"immediate"`
}

// JournalConfig holds audit journal settings. An empty dir disables the
// journal.
type JournalConfig struct {
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// HistoryConfig holds run-history store settings. An empty dir disables
// the store.
type HistoryConfig struct {
	Dir string `yaml:"dir"`
}

// PolicyConfig holds exemption policy settings. An empty dir means no
// policies are loaded.
type PolicyConfig struct {
	Dir string `yaml:"dir"`
}

// OTELConfig holds OpenTelemetry settings.
type OTELConfig struct {
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// NotConfiguredError reports a missing required configuration value. The
// run it would have configured must not issue any remote call.
type NotConfiguredError struct {
	Key string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("missing config item %q", e.Key)
}

// Load reads and parses a YAML config file and applies defaults for the
// optional sections. Required keys are checked by Validate, not here, so
// callers can load a partial config and name the missing key themselves.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := parseDurations(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Daemon.IntervalStr == "" {
		cfg.Daemon.IntervalStr = "1h"
	}
	if cfg.Daemon.Listen == "" {
		cfg.Daemon.Listen = ":2112"
	}
	if cfg.Notify.TimeoutStr == "" {
		cfg.Notify.TimeoutStr = "10s"
	}
	if cfg.Journal.Dir != "" && cfg.Journal.RetentionDays == 0 {
		cfg.Journal.RetentionDays = 30
	}
	if cfg.OTEL.ServiceName == "" {
		cfg.OTEL.ServiceName = "leima"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func parseDurations(cfg *Config) error {
	interval, err := time.ParseDuration(cfg.Daemon.IntervalStr)
	if err != nil {
		return fmt.Errorf("parse daemon interval %q: %w", cfg.Daemon.IntervalStr, err)
	}
	cfg.Daemon.Interval = interval

	timeout, err := time.ParseDuration(cfg.Notify.TimeoutStr)
	if err != nil {
		return fmt.Errorf("parse notify timeout %q: %w", cfg.Notify.TimeoutStr, err)
	}
	cfg.Notify.Timeout = timeout

	return nil
}

// Validate checks the four required values in order and returns a
// *NotConfiguredError naming the first missing one.
func (c *Config) Validate() error {
	if c.AccessKeyID == "" {
		return &NotConfiguredError{Key: KeyAccessKeyID}
	}
	if c.SecretAccessKey == "" {
		return &NotConfiguredError{Key: KeySecretAccessKey}
	}
	if len(c.Regions) == 0 {
		return &NotConfiguredError{Key: KeyRegions}
	}
	if len(c.Tags) == 0 {
		return &NotConfiguredError{Key: KeyTags}
	}
	return nil
}

// BaseTags returns the configured tag set as an independent types.Tags
// copy, safe to hold read-only for a whole run.
func (c *Config) BaseTags() types.Tags {
	return types.Tags(c.Tags).Clone()
}
