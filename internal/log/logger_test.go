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

package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/relaymq/relay/internal/boot"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewFormats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := New(&Config{Level: "info", Format: FormatJSON, Output: buf})
		logger.Info("hello")
		if !strings.HasPrefix(buf.String(), "{") {
			t.Errorf("JSON output = %q, want a JSON object", buf.String())
		}
	})

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := New(&Config{Level: "info", Format: FormatText, Output: buf})
		logger.Info("hello")
		if !strings.Contains(buf.String(), "msg=hello") {
			t.Errorf("text output = %q, want key=value rendering", buf.String())
		}
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		if New(nil) == nil {
			t.Error("New(nil) returned nil")
		}
	})
}

func TestFromContext(t *testing.T) {
	cfg := FromContext(&boot.Context{LogLevel: "DEBUG", LogFormat: "TEXT"})
	if cfg.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Level)
	}
	if cfg.Format != FormatText {
		t.Errorf("Format = %q, want text", cfg.Format)
	}

	cfg = FromContext(&boot.Context{})
	if cfg.Level != "info" || cfg.Format != FormatJSON {
		t.Errorf("defaults = %q/%q, want info/json", cfg.Level, cfg.Format)
	}
}

func TestRedactValue(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"RELAY_API_KEY", "[REDACTED]"},
		{"DB_PASSWORD", "[REDACTED]"},
		{"AWS_SECRET_ACCESS_KEY", "[REDACTED]"},
		{"GITHUB_TOKEN", "[REDACTED]"},
		{"private_key_path", "[REDACTED]"},
		{"RELAY_NODE_NAME", "value"},
		{"HOME", "value"},
	}
	for _, tt := range tests {
		if got := redactValue(tt.key, "value"); got != tt.want {
			t.Errorf("redactValue(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestLogEnvironmentRedactsSecrets(t *testing.T) {
	t.Setenv("RELAY_TEST_SECRET", "hunter2")
	t.Setenv("RELAY_TEST_PLAIN", "visible")

	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	LogEnvironment(logger)

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Error("environment log leaked a secret value")
	}
	if !strings.Contains(out, "visible") {
		t.Error("environment log is missing a plain value")
	}
}
