// Package logging builds the diagnostic logger shared by the CLI and store.
//
// Diagnostics go to stderr and stay separate from the user-facing messages
// printed by package ui.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Prefix tags every log line.
const Prefix = "tasktracker"

// Options holds logger configuration.
type Options struct {
	Level           log.Level
	Formatter       log.Formatter
	ReportTimestamp bool
}

// ParseLevel maps a config string to a log level. Unknown values mean warn.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.WarnLevel
	}
}

// ParseFormatter maps a config string to a formatter. Unknown values mean text.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          Prefix,
	})
}

// FromConfig builds a logger from config strings. Timestamps are reported
// only at debug level, where they help line up store activity.
func FromConfig(w io.Writer, level, format string) *log.Logger {
	lvl := ParseLevel(level)
	return New(w, Options{
		Level:           lvl,
		Formatter:       ParseFormatter(format),
		ReportTimestamp: lvl == log.DebugLevel,
	})
}
