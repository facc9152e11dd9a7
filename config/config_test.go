package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "leima.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	content := `
aws_access_key_id: AKIAEXAMPLE
aws_secret_access_key: secret
regions:
  - us-east-1
  - eu-west-1
tags:
  env: prod
  team: platform

notify:
  webhook_url: https://chat.example.com/hooks/abc
daemon:
  interval: 30m
  listen: ":9111"
journal:
  dir: /var/lib/leima/journal
history:
  dir: /var/lib/leima
policy:
  dir: ./policies
log:
  level: debug
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AccessKeyID != "AKIAEXAMPLE" {
		t.Errorf("AccessKeyID = %v, want AKIAEXAMPLE", cfg.AccessKeyID)
	}
	if cfg.SecretAccessKey != "secret" {
		t.Errorf("SecretAccessKey = %v, want secret", cfg.SecretAccessKey)
	}
	if len(cfg.Regions) != 2 || cfg.Regions[0] != "us-east-1" {
		t.Errorf("Regions = %v", cfg.Regions)
	}
	if cfg.Tags["env"] != "prod" || cfg.Tags["team"] != "platform" {
		t.Errorf("Tags = %v", cfg.Tags)
	}
	if cfg.Daemon.Interval != 30*time.Minute {
		t.Errorf("Daemon.Interval = %v, want 30m", cfg.Daemon.Interval)
	}
	if cfg.Daemon.Listen != ":9111" {
		t.Errorf("Daemon.Listen = %v", cfg.Daemon.Listen)
	}
	if cfg.Journal.RetentionDays != 30 {
		t.Errorf("Journal.RetentionDays = %v, want default 30", cfg.Journal.RetentionDays)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %v", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "aws_access_key_id: x\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Daemon.Interval != time.Hour {
		t.Errorf("Daemon.Interval = %v, want 1h", cfg.Daemon.Interval)
	}
	if cfg.Daemon.Listen != ":2112" {
		t.Errorf("Daemon.Listen = %v, want :2112", cfg.Daemon.Listen)
	}
	if cfg.Notify.Timeout != 10*time.Second {
		t.Errorf("Notify.Timeout = %v, want 10s", cfg.Notify.Timeout)
	}
	if cfg.OTEL.ServiceName != "leima" {
		t.Errorf("OTEL.ServiceName = %v, want leima", cfg.OTEL.ServiceName)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %v, want info", cfg.Log.Level)
	}
	if cfg.Journal.RetentionDays != 0 {
		t.Errorf("Journal.RetentionDays = %v, want 0 when journal disabled", cfg.Journal.RetentionDays)
	}
}

func TestLoadBadInterval(t *testing.T) {
	_, err := Load(writeConfig(t, "daemon:\n  interval: soon\n"))
	if err == nil {
		t.Fatal("Load() error = nil, want parse failure")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Load() error = nil, want read failure")
	}
}

func validConfig() *Config {
	return &Config{
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "secret",
		Regions:         []string{"us-east-1"},
		Tags:            map[string]string{"env": "prod"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing access key id", func(c *Config) { c.AccessKeyID = "" }, KeyAccessKeyID},
		{"missing secret", func(c *Config) { c.SecretAccessKey = "" }, KeySecretAccessKey},
		{"missing regions", func(c *Config) { c.Regions = nil }, KeyRegions},
		{"missing tags", func(c *Config) { c.Tags = nil }, KeyTags},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantKey == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var notConfigured *NotConfiguredError
			if !errors.As(err, &notConfigured) {
				t.Fatalf("Validate() error = %v, want *NotConfiguredError", err)
			}
			if notConfigured.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", notConfigured.Key, tt.wantKey)
			}
		})
	}
}

func TestValidateNamesFirstMissingKey(t *testing.T) {
	cfg := &Config{}

	var notConfigured *NotConfiguredError
	if !errors.As(cfg.Validate(), &notConfigured) {
		t.Fatal("want *NotConfiguredError")
	}
	if notConfigured.Key != KeyAccessKeyID {
		t.Errorf("Key = %q, want %q", notConfigured.Key, KeyAccessKeyID)
	}
}

func TestBaseTagsIsACopy(t *testing.T) {
	cfg := validConfig()

	base := cfg.BaseTags()
	base["Name"] = "mutated"

	if _, ok := cfg.Tags["Name"]; ok {
		t.Error("BaseTags() must return an independent copy")
	}
}
