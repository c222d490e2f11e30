package config

import "strings"

// Config is the on-disk configuration (YAML or JSON).
//
// All durations are Go duration strings (e.g. "500ms", "20s", "1m").
type Config struct {
	Logging  LoggingConfig  `json:"logging"`
	Storage  StorageConfig  `json:"storage"`
	Reminder ReminderConfig `json:"reminder"`
	Notify   NotifyConfig   `json:"notify,omitempty"`
}

type LoggingConfig struct {
	Level   string        `json:"level,omitempty"`
	Console bool          `json:"console"`
	File    LogFileConfig `json:"file,omitempty"`
}

type LogFileConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// StorageConfig selects the meal record store backend.
//
// Driver values:
//   - "file" (default): whole-snapshot JSON file, the local fallback store
//   - "sqlite": SQLite database file
type StorageConfig struct {
	Driver string `json:"driver,omitempty"`
	Path   string `json:"path,omitempty"`

	// BusyTimeout applies to sqlite only; empty means the driver default.
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// ReminderConfig controls the due-meal poller.
//
// Enabled is a pointer so an omitted field defaults to true while an explicit
// false still disables the poller.
type ReminderConfig struct {
	Enabled *bool `json:"enabled,omitempty"`

	// RecomputeInterval re-runs the next-due selection. Default "60s".
	RecomputeInterval string `json:"recompute_interval,omitempty"`

	// AlertInterval scans for due meals. Default "20s". Finer than the minute
	// granularity of meal times; duplicate alerts are suppressed by dedup.
	AlertInterval string `json:"alert_interval,omitempty"`

	// DedupWindow suppresses repeat alerts per (meal, date, time). Default "2m".
	DedupWindow string `json:"dedup_window,omitempty"`
}

type NotifyConfig struct {
	// RatePerSec caps user-visible notifications per second. Default 5.
	RatePerSec int         `json:"rate_per_sec,omitempty"`
	Sound      SoundConfig `json:"sound,omitempty"`
}

// SoundConfig configures the alarm sound played when a meal comes due.
type SoundConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`   // alarm file, e.g. ./meal-alarm.mp3
	Player  string `json:"player,omitempty"` // player command; default "paplay"
}

// Default returns a config with usable local defaults (file store next to the
// working directory, console logging, reminders on).
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "INFO", Console: true},
		Storage: StorageConfig{Driver: "file", Path: "./petfeed-meals.json"},
	}
}

func (c *Config) normalize() {
	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}
	if strings.TrimSpace(c.Storage.Driver) == "" {
		c.Storage.Driver = "file"
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		c.Storage.Path = "./petfeed-meals.json"
	}
}
