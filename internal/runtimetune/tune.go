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

// Package runtimetune applies runtime optimizer settings from the boot
// Context.
package runtimetune

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/relaymq/relay/internal/boot"
)

// Setup applies the Context's garbage-collector and GOMAXPROCS overrides.
// Zero values leave the runtime defaults untouched.
func Setup(ctx *boot.Context) error {
	if ctx.GCPercent != 0 {
		if ctx.GCPercent < -1 {
			return fmt.Errorf("gc percent %d out of range", ctx.GCPercent)
		}
		debug.SetGCPercent(ctx.GCPercent)
	}
	if ctx.MaxProcs > 0 {
		runtime.GOMAXPROCS(ctx.MaxProcs)
	}
	return nil
}
