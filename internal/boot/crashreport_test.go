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

package boot

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func testFault() *Fault {
	return &Fault{
		Class:   "string",
		Payload: "boom",
		Stack:   []string{"goroutine 1 [running]:", "main.run()", "\tmain.go:10"},
	}
}

func TestCrashReporterToStderr(t *testing.T) {
	stderr := &bytes.Buffer{}
	logbuf := &bytes.Buffer{}
	r := &CrashReporter{
		Logger: slog.New(slog.NewTextHandler(logbuf, nil)),
		Stderr: stderr,
	}

	f := testFault()
	r.Report(f, false)

	lines := strings.Split(strings.TrimRight(stderr.String(), "\n"), "\n")
	if len(lines) != 1+len(f.Stack) {
		t.Fatalf("stderr lines = %d, want header plus %d frames:\n%s",
			len(lines), len(f.Stack), stderr.String())
	}
	if !strings.Contains(lines[0], "boot fault (string): boom") {
		t.Errorf("header = %q, want fault class and payload", lines[0])
	}
	if logbuf.Len() != 0 {
		t.Error("diagnostics sink received output in diagnostics-unavailable mode")
	}
}

func TestCrashReporterToDiagnostics(t *testing.T) {
	stderr := &bytes.Buffer{}
	logbuf := &bytes.Buffer{}
	r := &CrashReporter{
		Logger: slog.New(slog.NewTextHandler(logbuf, nil)),
		Stderr: stderr,
	}

	f := testFault()
	r.Report(f, true)

	if stderr.Len() != 0 {
		t.Error("stderr received output in diagnostics-available mode")
	}
	out := logbuf.String()
	if !strings.Contains(out, "boot fault (string): boom") {
		t.Error("diagnostics sink is missing the fault header")
	}
	for _, frame := range f.Stack {
		if !strings.Contains(out, strings.TrimSpace(frame)) {
			t.Errorf("diagnostics sink is missing frame %q", frame)
		}
	}
}

func TestCrashReporterReportError(t *testing.T) {
	stderr := &bytes.Buffer{}
	r := &CrashReporter{Stderr: stderr}

	r.ReportError(errors.New("config rejected"), false)

	if !strings.Contains(stderr.String(), "boot failed: config rejected") {
		t.Errorf("stderr = %q, want the failure line", stderr.String())
	}
}

func TestAsFault(t *testing.T) {
	f := asFault(errors.New("boom"))
	if f.Class != "*errors.errorString" {
		t.Errorf("Class = %q, want *errors.errorString", f.Class)
	}
	if len(f.Stack) == 0 {
		t.Error("Stack is empty")
	}

	// A Fault passes through unchanged so the original capture point wins.
	if again := asFault(f); again != f {
		t.Error("asFault() rewrapped an existing Fault")
	}
}
