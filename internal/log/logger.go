// Copyright 2026 The Relay Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log is the diagnostics subsystem. During boot it is configured
// twice: early mode installs a plain text handler on stderr as soon as a
// partial boot Context exists, and the final diagnostics setup step installs
// the fully configured handler once the Context is complete.
package log

import (
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/relaymq/relay/internal/boot"
)

// Format represents the log output format.
type Format string

const (
	// FormatJSON outputs logs in JSON format for machine parsing.
	FormatJSON Format = "json"
	// FormatText outputs logs in human-readable text format.
	FormatText Format = "text"
)

// Config holds the logging configuration.
type Config struct {
	// Level sets the minimum log level (debug, info, warn, error).
	// Default: info
	Level string

	// Format sets the output format (json, text).
	// Default: json
	Format Format

	// Output is the writer for log output.
	// Default: os.Stderr
	Output io.Writer
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: FormatJSON,
		Output: os.Stderr,
	}
}

// FromContext builds a Config from the boot Context.
func FromContext(ctx *boot.Context) *Config {
	cfg := DefaultConfig()
	if ctx.LogLevel != "" {
		cfg.Level = strings.ToLower(ctx.LogLevel)
	}
	if ctx.LogFormat != "" {
		cfg.Format = Format(strings.ToLower(ctx.LogFormat))
	}
	return cfg
}

// New creates a new structured logger from the given configuration.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}
	var handler slog.Handler
	switch cfg.Format {
	case FormatText:
		handler = slog.NewTextHandler(cfg.Output, opts)
	case FormatJSON:
		fallthrough
	default:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	return slog.New(handler)
}

// parseLevel converts a string level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitEarly configures diagnostics in early mode: a text handler on stderr
// honoring the Context's level. The resulting logger becomes the process
// default so code running before the final setup step still logs somewhere
// sensible.
func InitEarly(ctx *boot.Context) *slog.Logger {
	cfg := FromContext(ctx)
	cfg.Format = FormatText
	logger := New(cfg)
	slog.SetDefault(logger)
	return logger
}

// Setup is the final diagnostics setup step: it installs the fully
// configured handler as the process default.
func Setup(ctx *boot.Context) error {
	slog.SetDefault(New(FromContext(ctx)))
	return nil
}

// LogEnvironment logs the current process environment at debug level with
// secret-looking values redacted.
func LogEnvironment(logger *slog.Logger) {
	env := os.Environ()
	sort.Strings(env)
	for _, kv := range env {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		logger.Debug("environment", slog.String(k, redactValue(k, v)))
	}
}

// secretMarkers flag environment variable names whose values must never be
// logged verbatim.
var secretMarkers = []string{"SECRET", "TOKEN", "PASSWORD", "CREDENTIAL", "API_KEY", "PRIVATE"}

func redactValue(key, value string) string {
	upper := strings.ToUpper(key)
	for _, marker := range secretMarkers {
		if strings.Contains(upper, marker) {
			return "[REDACTED]"
		}
	}
	return value
}

// Diag adapts the package to the boot sequencer's diagnostics surface.
type Diag struct{}

// InitEarly implements boot.Diagnostics.
func (Diag) InitEarly(ctx *boot.Context) *slog.Logger {
	return InitEarly(ctx)
}

// LogEnvironment implements boot.Diagnostics.
func (Diag) LogEnvironment(logger *slog.Logger) {
	LogEnvironment(logger)
}
