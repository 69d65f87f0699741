package config

import (
	"github.com/olusolaa/anypoint-reconciler/internal/log"
)

type Config struct {
	Settings SettingsConfig `yaml:"settings"`
	Anypoint AnypointConfig `yaml:"anypoint"`
	CLI      CLIConfig      `yaml:"cli"`
	HTTP     HTTPConfig     `yaml:"http"`
	Journal  JournalConfig  `yaml:"journal"`
}

type SettingsConfig struct {
	LogLevel    log.Level  `yaml:"log_level"`
	LogFormat   log.Format `yaml:"log_format"`
	Concurrency int        `yaml:"concurrency" validate:"gte=0,lte=64"`
	Reporter    string     `yaml:"reporter" validate:"omitempty,oneof=text json"`
	NoColor     bool       `yaml:"no_color"`
}

// AnypointConfig carries the platform session settings. Bearer is usually
// supplied through ANYPOINT_BEARER rather than the file; Organization and
// Environment are names, resolved to ids once at session creation.
type AnypointConfig struct {
	Host         string `yaml:"host" validate:"required,url"`
	Bearer       string `yaml:"bearer"`
	Organization string `yaml:"organization"`
	Environment  string `yaml:"environment"`
}

// CLIConfig configures the anypoint-cli transport used by the resource
// kinds whose endpoints are only exposed through the CLI. Binary may
// contain arguments ("npx anypoint-cli"); it is split shell-style.
type CLIConfig struct {
	Binary string `yaml:"binary"`
}

type HTTPConfig struct {
	TimeoutSeconds    int     `yaml:"timeout_seconds" validate:"gte=0"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
}

// JournalConfig controls the local run history database. An empty Path
// selects ~/.anypoint-reconciler/journal.db.
type JournalConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			LogLevel:    log.LevelInfo,
			LogFormat:   log.FormatText,
			Concurrency: 4,
			Reporter:    "text",
		},
		Anypoint: AnypointConfig{
			Host: "https://anypoint.mulesoft.com",
		},
		CLI: CLIConfig{
			Binary: "anypoint-cli",
		},
		HTTP: HTTPConfig{
			TimeoutSeconds:    30,
			RequestsPerSecond: 8,
		},
		Journal: JournalConfig{},
	}
}
