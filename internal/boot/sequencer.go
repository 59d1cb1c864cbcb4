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

// Package boot sequences the environment-sensitive setup steps that must run
// before the daemon's supervision machinery starts. The sequencer runs on
// one of two paths: the initial pass resolves the boot Context, establishes
// the PID file and shutdown hook, and drives the full set of delegated setup
// steps; the re-entrant pass reuses the stored Context and drives a reduced
// subset. Partial failure removes the PID file (initial pass only) and is
// always reported, even when diagnostics never came up.
package boot

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// IdentityState reports whether a stable node identity has been resolved for
// this process.
type IdentityState int

const (
	// IdentityUnresolved selects the initial boot pass.
	IdentityUnresolved IdentityState = iota
	// IdentityResolved selects the re-entrant boot pass.
	IdentityResolved
)

// Outcome is the sentinel result of a successful boot pass.
type Outcome int

const (
	// OutcomeNoChild means boot succeeded and there is no persistent
	// child process for the supervisor to track.
	OutcomeNoChild Outcome = iota
)

// SetupFunc is the contract every delegated setup step satisfies.
type SetupFunc func(*Context) error

// Environment is the environment-resolution collaborator surface. It
// computes the boot Context in layers and owns the process's node-identity
// state.
type Environment interface {
	// IdentityState reports whether a node identity is already resolved.
	IdentityState() IdentityState

	// ResolvePreLog resolves the Context fields needed before
	// diagnostics can be configured.
	ResolvePreLog() (*Context, error)

	// LoadEnvFile augments the Context with values from the environment
	// file, available only once early diagnostics are up.
	LoadEnvFile(*Context) (*Context, error)

	// Finalize completes the Context and resolves the node identity.
	Finalize(*Context) (*Context, error)

	// ApplyRuntimeEnv applies the Context's plugin-path and application
	// environment-variable effects.
	ApplyRuntimeEnv(*Context) error
}

// Diagnostics is the logging subsystem surface the sequencer needs before
// the final diagnostics setup step runs.
type Diagnostics interface {
	// InitEarly configures diagnostics in early mode and returns the
	// boot logger.
	InitEarly(*Context) *slog.Logger

	// LogEnvironment logs the current process environment.
	LogEnvironment(*slog.Logger)
}

// Collaborators names the delegated subsystems the sequencer drives. Each
// setup field follows the setup(context) contract; nil entries are skipped,
// which test doubles rely on.
type Collaborators struct {
	FeatureFlags SetupFunc
	Config       SetupFunc
	Diagnostics  SetupFunc
	RuntimeTune  SetupFunc
	Transport    SetupFunc
	Cluster      SetupFunc

	// StopMetaDB stops the embedded metadata store. It is started as a
	// side effect of upstream dependencies before the transport is
	// configured, is non-functional in that state, and interferes with
	// cluster consistency checks, so both paths neutralize it before the
	// setup steps run. Must be idempotent.
	StopMetaDB func() error
}

type step struct {
	name string
	fn   SetupFunc
}

func (c Collaborators) initial() []step {
	return []step{
		{"feature-flags", c.FeatureFlags},
		{"config", c.Config},
		{"diagnostics", c.Diagnostics},
		{"runtime-tune", c.RuntimeTune},
		{"transport", c.Transport},
		{"cluster", c.Cluster},
	}
}

func (c Collaborators) reentrant() []step {
	return []step{
		{"feature-flags", c.FeatureFlags},
		{"diagnostics", c.Diagnostics},
		{"cluster", c.Cluster},
	}
}

// Sequencer is the top-level boot orchestrator. All fields are injected;
// the zero value is not usable.
type Sequencer struct {
	Env      Environment
	Diag     Diagnostics
	Steps    Collaborators
	Store    *ContextStore
	Hooks    *HookRegistry
	PIDFiles *PIDFileManager
	Reporter *CrashReporter

	// TraceInit enables low-level boot tracing when configured. Nil
	// means tracing is never enabled.
	TraceInit func() error

	logger *slog.Logger
	diagUp bool
}

// Run executes one boot pass. It selects the initial or re-entrant path from
// the environment's node-identity state and reports every failure exactly
// once: intentional step failures propagate wrapped in a StepError, any
// other fault is captured with its class, payload and stack and returned as
// a Fault.
func (s *Sequencer) Run() (outcome Outcome, err error) {
	path := "initial"
	defer func() {
		if p := recover(); p != nil {
			fault := asFault(p)
			s.Reporter.Report(fault, s.diagUp)
			err = fault
		}
		recordPass(path, err)
	}()

	if s.Env.IdentityState() == IdentityResolved {
		path = "reentrant"
		outcome, err = s.runReentrant()
	} else {
		outcome, err = s.runInitial()
	}
	if err != nil {
		s.Reporter.ReportError(err, s.diagUp)
	}
	return outcome, err
}

// runInitial is the first-ever pass: no node identity exists yet.
func (s *Sequencer) runInitial() (Outcome, error) {
	var ctx *Context

	// A fault anywhere in the pass must not leave a stray PID file
	// behind. Removal is a no-op until the Context carries a path.
	defer func() {
		if p := recover(); p != nil {
			fault := asFault(p)
			s.PIDFiles.Remove(ctx)
			panic(fault)
		}
	}()

	if s.TraceInit != nil {
		if err := s.TraceInit(); err != nil {
			return 0, &StepError{Step: "trace", Reason: err}
		}
	}

	pre, err := s.Env.ResolvePreLog()
	if err != nil {
		return 0, &StepError{Step: "resolve", Reason: err}
	}
	ctx = pre
	s.setLogger(s.Diag.InitEarly(ctx))
	s.Diag.LogEnvironment(s.logger)

	// The environment file can name values that were not visible before
	// diagnostics came up, so resolve again with the richer Context.
	ctx, err = s.Env.LoadEnvFile(ctx)
	if err != nil {
		return 0, &StepError{Step: "env-file", Reason: err}
	}
	s.setLogger(s.Diag.InitEarly(ctx))
	s.Diag.LogEnvironment(s.logger)

	ctx, err = s.Env.Finalize(ctx)
	if err != nil {
		return 0, &StepError{Step: "finalize", Reason: err}
	}
	ctx.InitialPass = true
	if err := s.Store.Set(ctx); err != nil {
		return 0, &StepError{Step: "context-store", Reason: err}
	}
	s.logger.Info("boot context resolved",
		slog.String("node", ctx.NodeName),
		slog.Bool("initial_pass", ctx.InitialPass),
		slog.String("pid_file", ctx.PIDFile))

	if err := s.Env.ApplyRuntimeEnv(ctx); err != nil {
		return 0, &StepError{Step: "runtime-env", Reason: err}
	}

	s.Hooks.Install(ctx, s.PIDFiles)
	if err := s.PIDFiles.Write(ctx); err != nil {
		// Losing the PID file is recoverable; aborting boot is not
		// worth the cost.
		s.logger.Warn("PID file write failed, continuing without one",
			slog.Any("error", err))
	}

	if err := s.runSteps(ctx, s.Steps.initial()); err != nil {
		s.PIDFiles.Remove(ctx)
		return 0, err
	}

	s.logger.Info("boot sequence complete", slog.String("node", ctx.NodeName))
	return OutcomeNoChild, nil
}

// runReentrant is a later pass in the same process: the node identity and
// Context were established by a previous initial pass.
func (s *Sequencer) runReentrant() (Outcome, error) {
	stored, ok := s.Store.Get()
	if !ok {
		return 0, &StepError{
			Step:   "context-store",
			Reason: errors.New("node identity resolved but no boot context stored"),
		}
	}
	// Diagnostics were configured by the initial pass and are process
	// state by now.
	s.setLogger(slog.Default())
	s.diagUp = true

	ctx := stored.Clone()
	ctx.InitialPass = false
	s.logger.Info("boot context retrieved",
		slog.String("node", ctx.NodeName),
		slog.Bool("initial_pass", ctx.InitialPass))

	// No PID file cleanup here on failure: the file is owned by the
	// initial pass.
	if err := s.runSteps(ctx, s.Steps.reentrant()); err != nil {
		return 0, err
	}

	s.logger.Info("boot sequence complete", slog.String("node", ctx.NodeName))
	return OutcomeNoChild, nil
}

// runSteps neutralizes the embedded metadata store and then drives the
// delegated setup steps strictly in order, stopping at the first failure.
func (s *Sequencer) runSteps(ctx *Context, steps []step) error {
	if s.Steps.StopMetaDB != nil {
		if err := s.Steps.StopMetaDB(); err != nil {
			recordStepFailure("metadb-stop")
			return &StepError{Step: "metadb-stop", Reason: err}
		}
	}
	tracer := otel.Tracer("relay/boot")
	for _, st := range steps {
		if st.fn == nil {
			continue
		}
		s.logger.Debug("running setup step", slog.String("step", st.name))
		_, span := tracer.Start(context.Background(), "boot."+st.name)
		err := st.fn(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if err != nil {
			recordStepFailure(st.name)
			return &StepError{Step: st.name, Reason: err}
		}
	}
	return nil
}

// setLogger swaps the boot logger and keeps the crash reporter pointed at
// the live diagnostics sink.
func (s *Sequencer) setLogger(logger *slog.Logger) {
	s.logger = logger
	s.diagUp = true
	if s.Reporter != nil {
		s.Reporter.Logger = logger
	}
}
