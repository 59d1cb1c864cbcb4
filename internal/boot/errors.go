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
	"runtime/debug"
	"strings"
)

// StepError is an intentional failure reported by a delegated setup step.
// The original reason stays reachable through Unwrap, so callers can match
// it with errors.Is and errors.As.
type StepError struct {
	// Step names the boot step that failed.
	Step string

	// Reason is the failure the collaborator reported.
	Reason error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("boot step %s failed: %v", e.Step, e.Reason)
}

// Unwrap returns the underlying reason for errors.Is/As support.
func (e *StepError) Unwrap() error {
	return e.Reason
}

// Fault is an unexpected failure captured at the boot boundary: a recovered
// panic with its class, payload and call stack. Faults are reported through
// the CrashReporter before Run returns them.
type Fault struct {
	// Class is the dynamic type of the panic payload.
	Class string

	// Payload is the recovered panic value.
	Payload any

	// Stack holds the captured stack trace, one frame per line.
	Stack []string
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("boot fault (%s): %v", f.Class, f.Payload)
}

// asFault wraps a recovered panic value into a Fault, capturing the stack at
// the point of recovery. A payload that is already a Fault passes through so
// the stack from the original capture point is preserved.
func asFault(payload any) *Fault {
	if f, ok := payload.(*Fault); ok {
		return f
	}
	stack := strings.Split(strings.TrimRight(string(debug.Stack()), "\n"), "\n")
	return &Fault{
		Class:   fmt.Sprintf("%T", payload),
		Payload: payload,
		Stack:   stack,
	}
}
