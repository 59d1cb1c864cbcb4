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
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestPIDFileManagerWrite(t *testing.T) {
	m := &PIDFileManager{}

	t.Run("writes current PID", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "relayd.pid")
		if err := m.Write(&Context{PIDFile: path}); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if got, want := string(data), strconv.Itoa(os.Getpid()); got != want {
			t.Errorf("PID file content = %q, want %q", got, want)
		}
	})

	t.Run("creates parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "run", "relayd.pid")
		if err := m.Write(&Context{PIDFile: path}); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		info, err := os.Stat(filepath.Dir(path))
		if err != nil {
			t.Fatalf("parent directory not created: %v", err)
		}
		if mode := info.Mode() & os.ModePerm; mode != 0700 {
			t.Errorf("parent directory mode = %04o, want 0700", mode)
		}
	})

	t.Run("no-op without a path", func(t *testing.T) {
		if err := m.Write(&Context{}); err != nil {
			t.Errorf("Write() error = %v, want nil", err)
		}
	})

	t.Run("reports unwritable location", func(t *testing.T) {
		tmp := t.TempDir()
		blocker := filepath.Join(tmp, "blocker")
		if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		err := m.Write(&Context{PIDFile: filepath.Join(blocker, "relayd.pid")})
		if err == nil {
			t.Error("Write() into a file-backed directory succeeded, want error")
		}
	})
}

func TestPIDFileManagerRemove(t *testing.T) {
	m := &PIDFileManager{}

	t.Run("removes the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "relayd.pid")
		if err := os.WriteFile(path, []byte("1234"), 0600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		m.Remove(&Context{PIDFile: path})
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("PID file still exists after Remove()")
		}
	})

	t.Run("keeps the file when configured", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "relayd.pid")
		if err := os.WriteFile(path, []byte("1234"), 0600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		m.Remove(&Context{PIDFile: path, KeepPIDFileOnExit: true})
		if _, err := os.Stat(path); err != nil {
			t.Errorf("PID file missing after Remove() with keep-on-exit: %v", err)
		}
	})

	t.Run("tolerates a missing file", func(t *testing.T) {
		m.Remove(&Context{PIDFile: filepath.Join(t.TempDir(), "gone.pid")})
	})

	t.Run("tolerates nil context", func(t *testing.T) {
		m.Remove(nil)
	})
}
