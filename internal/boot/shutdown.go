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

import "sync"

// Hook is a shutdown callback. The reason describes why the process is
// terminating (typically the signal name).
type Hook func(reason string)

// HookRegistry holds the process shutdown hook. Installing the boot hook
// wraps whatever hook was registered before it, so shutdown behavior set up
// by other subsystems is never discarded.
type HookRegistry struct {
	mu   sync.Mutex
	hook Hook
}

// NewHookRegistry returns a registry with no hook installed.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{}
}

// Register replaces the current hook. Subsystems that install shutdown
// behavior before boot runs use this directly.
func (r *HookRegistry) Register(h Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = h
}

// Install registers the boot shutdown hook for ctx: remove the PID file,
// then invoke the previously registered hook (if any) with the same reason.
// The (ctx, previous hook) pair is captured once here and never mutated, so
// the asynchronous shutdown invocation needs no further synchronization.
func (r *HookRegistry) Install(ctx *Context, pidfiles *PIDFileManager) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.hook
	r.hook = func(reason string) {
		pidfiles.Remove(ctx)
		if prev != nil {
			prev(reason)
		}
	}
}

// Fire invokes the current hook, if any. The host process calls this exactly
// once at termination.
func (r *HookRegistry) Fire(reason string) {
	r.mu.Lock()
	h := r.hook
	r.mu.Unlock()
	if h != nil {
		h(reason)
	}
}
