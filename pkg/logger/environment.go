package logger

import (
	"log/slog"
	"strings"
)

// Environment names a deployment stage.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// ParseEnvironment maps a name or its short alias to an Environment.
// Anything unrecognised is treated as development.
func ParseEnvironment(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Production), "prod":
		return Production
	case string(Staging), "stage":
		return Staging
	default:
		return Development
	}
}

func (e Environment) defaults() (slog.Level, Format) {
	if e == Development {
		return slog.LevelDebug, FormatText
	}
	return slog.LevelInfo, FormatJSON
}
