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
	"os"
	"path/filepath"
	"strconv"
)

// PIDFileManager writes and removes the PID file named by the boot Context.
// A write failure degrades operability tooling but not correctness, so the
// sequencer only logs it; removal is always best-effort.
type PIDFileManager struct{}

// Write records the current process ID at the Context's PID file path,
// creating the parent directory if needed. No-op when no path is configured.
func (m *PIDFileManager) Write(ctx *Context) error {
	if ctx == nil || ctx.PIDFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(ctx.PIDFile), 0700); err != nil {
		return fmt.Errorf("create PID file directory: %w", err)
	}
	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(ctx.PIDFile, []byte(pid), 0600); err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}
	return nil
}

// Remove deletes the PID file unless the Context keeps it across exit.
// Delete errors are ignored; the file may already be gone.
func (m *PIDFileManager) Remove(ctx *Context) {
	if ctx == nil || ctx.PIDFile == "" || ctx.KeepPIDFileOnExit {
		return
	}
	_ = os.Remove(ctx.PIDFile)
}
