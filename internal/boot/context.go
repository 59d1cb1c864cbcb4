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
	"errors"
	"sync"
)

// ErrContextStored is returned when a second Context is stored for the same
// process lifetime.
var ErrContextStored = errors.New("boot context already stored")

// Context describes the resolved boot environment for one process lifetime.
// It is built up during the initial boot pass and must be treated as
// read-only once it has been handed to a ContextStore.
type Context struct {
	// NodeName is the stable node identity selected for this process.
	NodeName string

	// PIDFile is the path the daemon's PID is written to. Empty disables
	// PID file management entirely.
	PIDFile string

	// KeepPIDFileOnExit leaves the PID file in place at shutdown.
	KeepPIDFileOnExit bool

	// InitialPass is true only on the first boot pass of the process.
	InitialPass bool

	// EnvFile is the optional YAML environment file merged into the
	// Context after early diagnostics are up.
	EnvFile string

	// AppEnv holds application environment variables exported before the
	// delegated setup steps run.
	AppEnv map[string]string

	// PluginPaths are extra search paths appended to the plugin path.
	PluginPaths []string

	// DataDir is the directory backing the embedded metadata store.
	// Empty selects an in-memory store.
	DataDir string

	LogLevel  string
	LogFormat string

	// TraceBoot enables low-level boot tracing.
	TraceBoot bool

	// GCPercent overrides the garbage collector target percentage when
	// non-zero. -1 disables the collector.
	GCPercent int

	// MaxProcs overrides GOMAXPROCS when positive.
	MaxProcs int

	// ListenAddr is the cluster transport bind address. Empty disables
	// the transport.
	ListenAddr string

	// Peers are the declared cluster peer node names.
	Peers []string
}

// Clone returns a deep copy of the Context so a later boot pass can adjust
// per-pass fields without mutating the stored original.
func (c *Context) Clone() *Context {
	out := *c
	if c.AppEnv != nil {
		out.AppEnv = make(map[string]string, len(c.AppEnv))
		for k, v := range c.AppEnv {
			out.AppEnv[k] = v
		}
	}
	out.PluginPaths = append([]string(nil), c.PluginPaths...)
	out.Peers = append([]string(nil), c.Peers...)
	return &out
}

// ContextStore holds the Context resolved by the initial boot pass so
// re-entrant passes can retrieve it without recomputation. It is set exactly
// once per process lifetime and read-only afterwards.
type ContextStore struct {
	mu  sync.Mutex
	ctx *Context
}

// NewContextStore returns an empty store.
func NewContextStore() *ContextStore {
	return &ContextStore{}
}

// Set stores the Context. A second Set fails with ErrContextStored.
func (s *ContextStore) Set(ctx *Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx != nil {
		return ErrContextStored
	}
	s.ctx = ctx
	return nil
}

// Get returns the stored Context, or false if no initial pass has stored one.
func (s *ContextStore) Get() (*Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx, s.ctx != nil
}
