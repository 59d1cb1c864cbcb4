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
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CrashReporter renders boot failures. When diagnostics are up, every line
// goes through the structured log sink so it is captured with the rest of
// the process logs. When they are not, lines go straight to stderr: a boot
// failure must stay visible even when logging setup itself is what failed.
type CrashReporter struct {
	// Logger is the sink used when diagnostics are up. Nil falls back to
	// slog.Default at report time.
	Logger *slog.Logger

	// Stderr is the fallback sink. Nil means os.Stderr.
	Stderr io.Writer
}

// Report renders a fault: a header line followed by one line per stack
// frame.
func (r *CrashReporter) Report(f *Fault, diagnosticsUp bool) {
	header := fmt.Sprintf("boot fault (%s): %v", f.Class, f.Payload)
	if diagnosticsUp {
		logger := r.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error(header)
		for _, line := range f.Stack {
			logger.Error(line)
		}
		return
	}
	w := r.stderr()
	fmt.Fprintln(w, header)
	for _, line := range f.Stack {
		fmt.Fprintln(w, line)
	}
}

// ReportError renders an intentional boot failure as a single line through
// the same sink selection as Report.
func (r *CrashReporter) ReportError(err error, diagnosticsUp bool) {
	if diagnosticsUp {
		logger := r.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("boot failed", slog.Any("error", err))
		return
	}
	fmt.Fprintf(r.stderr(), "boot failed: %v\n", err)
}

func (r *CrashReporter) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}
