// Package config loads the laesemaskine YAML configuration and applies
// environment overrides.
package config

import (
	"log/slog"

	"github.com/abhisek/laesemaskine/internal/session"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to a slog level. Unknown levels map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Config is the root configuration.
type Config struct {
	// Database is the SQLite file path. Empty means the default data path.
	Database string `yaml:"database"`

	// Words is the catalog JSON path.
	Words string `yaml:"words"`

	LogLevel LogLevel `yaml:"log_level"`

	// FeedbackMode is used for new sessions that don't name one.
	FeedbackMode session.FeedbackMode `yaml:"feedback_mode"`

	Selection Selection `yaml:"selection"`
}

// Selection configures how words are picked for a session.
type Selection struct {
	// Count is how many words a session gets.
	Count int `yaml:"count"`

	// Band widens the level match to |level - target| <= Band. Zero means
	// exact level only.
	Band int `yaml:"band"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		LogLevel:     LogInfo,
		FeedbackMode: session.FeedbackPerWord,
		Selection:    Selection{Count: 20},
	}
}
