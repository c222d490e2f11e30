package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "petfeed.yaml", `
logging:
  level: DEBUG
  console: true
storage:
  driver: sqlite
  path: ./meals.db
  busy_timeout: 5s
reminder:
  enabled: true
  alert_interval: 20s
notify:
  rate_per_sec: 3
  sound:
    enabled: true
    path: ./meal-alarm.mp3
`)
	m := NewManager(path)
	cfg, err := m.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("logging.level = %q", cfg.Logging.Level)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.Path != "./meals.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Reminder.Enabled == nil || !*cfg.Reminder.Enabled {
		t.Errorf("reminder.enabled = %v", cfg.Reminder.Enabled)
	}
	if cfg.Reminder.AlertInterval != "20s" {
		t.Errorf("reminder.alert_interval = %q", cfg.Reminder.AlertInterval)
	}
	if cfg.Notify.RatePerSec != 3 || !cfg.Notify.Sound.Enabled {
		t.Errorf("notify = %+v", cfg.Notify)
	}
}

func TestParseJSON(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "petfeed.json", `{
  "logging": {"level": "INFO", "console": true},
  "storage": {"driver": "file", "path": "./meals.json"},
  "reminder": {"enabled": false}
}`)
	m := NewManager(path)
	cfg, err := m.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Storage.Path != "./meals.json" {
		t.Errorf("storage.path = %q", cfg.Storage.Path)
	}
	if cfg.Reminder.Enabled == nil || *cfg.Reminder.Enabled {
		t.Errorf("explicit enabled=false lost: %v", cfg.Reminder.Enabled)
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "petfeed.yaml", `
storage:
  driver: file
  flavor: chunky
`)
	m := NewManager(path)
	if _, err := m.Parse(); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "petfeed.json", `{"storage": {"driver": "file"}}{"extra": 1}`)
	m := NewManager(path)
	if _, err := m.Parse(); err == nil {
		t.Fatal("expected error for trailing data")
	}
}

func TestParseMissingFileFallsBackToDefaults(t *testing.T) {
	t.Parallel()
	m := NewManager(filepath.Join(t.TempDir(), "absent.yaml"))
	cfg, err := m.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Storage.Driver != "file" || cfg.Storage.Path == "" {
		t.Errorf("defaults not applied: %+v", cfg.Storage)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("logging.level = %q", cfg.Logging.Level)
	}
}

func TestNormalizeFillsEmptyFields(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "petfeed.yaml", `
logging:
  console: true
`)
	m := NewManager(path)
	cfg, err := m.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Storage.Driver != "file" {
		t.Errorf("storage.driver = %q, want file default", cfg.Storage.Driver)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("logging.level = %q, want INFO default", cfg.Logging.Level)
	}
}

func TestLoadCommitsAndGet(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "petfeed.yaml", `
storage:
  driver: sqlite
  path: ./meals.db
`)
	m := NewManager(path)
	if m.Get() != nil {
		t.Fatal("Get before Load should be nil")
	}
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Get() != cfg {
		t.Fatal("Get did not return the committed config")
	}
}

func TestSubscribePublishUnsubscribe(t *testing.T) {
	t.Parallel()
	m := NewManager("unused")
	ch := m.Subscribe(1)

	cfg := Default()
	m.publish(cfg)
	select {
	case got := <-ch:
		if got != cfg {
			t.Fatal("wrong config delivered")
		}
	default:
		t.Fatal("no config delivered")
	}

	// A full buffer gets the stale item replaced by the newest.
	first, second := Default(), Default()
	m.publish(first)
	m.publish(second)
	select {
	case got := <-ch:
		if got != second {
			t.Fatal("stale config not replaced by newest")
		}
	default:
		t.Fatal("no config delivered after double publish")
	}

	m.Unsubscribe(ch)
	if _, open := <-ch; open {
		t.Fatal("channel not closed by Unsubscribe")
	}
	// Publishing after unsubscribe must not panic.
	m.publish(Default())
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"20s", 20 * time.Second, false},
		{" 1m ", time.Minute, false},
		{"500ms", 500 * time.Millisecond, false},
		{"-5s", 0, true},
		{"soon", 0, true},
	}
	for _, tc := range tests {
		d, err := ParseDurationField("reminder.alert_interval", tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDurationField(%q): expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDurationField(%q): %v", tc.raw, err)
			continue
		}
		if d != tc.want {
			t.Errorf("ParseDurationField(%q) = %v, want %v", tc.raw, d, tc.want)
		}
	}
}

func TestParseDurationOrDefault(t *testing.T) {
	t.Parallel()
	d, err := ParseDurationOrDefault("reminder.recompute_interval", "", time.Minute)
	if err != nil || d != time.Minute {
		t.Fatalf("empty: d=%v err=%v", d, err)
	}
	d, err = ParseDurationOrDefault("reminder.recompute_interval", "90s", time.Minute)
	if err != nil || d != 90*time.Second {
		t.Fatalf("explicit: d=%v err=%v", d, err)
	}
	if _, err := ParseDurationOrDefault("reminder.recompute_interval", "bogus", time.Minute); err == nil {
		t.Fatal("expected error for bogus duration")
	}
}
