package config

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// enum maps case-insensitive raw strings onto typed values with a fallback.
type enum[T ~string] struct {
	values   map[string]T
	fallback T
}

func (e enum[T]) normalize(raw T) (T, bool) {
	if v, ok := e.values[strings.ToLower(strings.TrimSpace(string(raw)))]; ok {
		return v, true
	}
	return e.fallback, false
}

func (e enum[T]) valid() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var (
	logLevels = enum[LogLevel]{values: map[string]LogLevel{
		"debug": LogLevelDebug, "info": LogLevelInfo, "warn": LogLevelWarn, "warning": LogLevelWarn, "error": LogLevelError,
	}, fallback: LogLevelInfo}
	logFormats = enum[LogFormat]{values: map[string]LogFormat{
		"json": LogFormatJSON, "text": LogFormatText,
	}, fallback: LogFormatText}
	outputFormats = enum[OutputFormat]{values: map[string]OutputFormat{
		"html": OutputFormatHTML, "json": OutputFormatJSON,
	}, fallback: ""}
)

// NormalizeLogLevel converts a raw level string, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel {
	v, _ := logLevels.normalize(LogLevel(raw))
	return v
}

// NormalizeOutputFormat converts a raw format string; unknown values return "".
func NormalizeOutputFormat(raw string) OutputFormat {
	v, _ := outputFormats.normalize(OutputFormat(raw))
	return v
}

// Normalize case-folds enumerations and cleans paths in place. It returns
// human-readable warnings for values that were changed or replaced.
func Normalize(cfg *Config) []string {
	var warnings []string

	if cfg.Monitoring.Logging.Level != "" {
		lvl, ok := logLevels.normalize(cfg.Monitoring.Logging.Level)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown logging.level %q, using %s (valid: %v)", cfg.Monitoring.Logging.Level, lvl, logLevels.valid()))
		}
		cfg.Monitoring.Logging.Level = lvl
	}
	if cfg.Monitoring.Logging.Format != "" {
		f, ok := logFormats.normalize(cfg.Monitoring.Logging.Format)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown logging.format %q, using %s (valid: %v)", cfg.Monitoring.Logging.Format, f, logFormats.valid()))
		}
		cfg.Monitoring.Logging.Format = f
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = OutputFormatHTML
	} else if f, ok := outputFormats.normalize(cfg.Output.Format); ok {
		cfg.Output.Format = f
	}

	cfg.HTMLTheme = strings.ToLower(strings.TrimSpace(cfg.HTMLTheme))
	cfg.Source.RootDoc = strings.Trim(path.Clean("/"+strings.TrimSpace(cfg.Source.RootDoc)), "/")
	for i, e := range cfg.Extensions {
		cfg.Extensions[i] = strings.ToLower(strings.TrimSpace(e))
	}
	return warnings
}
