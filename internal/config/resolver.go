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

// Package config resolves the boot Context from the process environment and
// the optional YAML environment file, and owns the process's node-identity
// state. Resolution happens in layers: ResolvePreLog reads only what early
// diagnostics need, LoadEnvFile merges the environment file without
// clobbering explicit environment values, and Finalize selects the node
// identity.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/relaymq/relay/internal/boot"
)

// Environment variables consumed during boot.
const (
	EnvNodeName    = "RELAY_NODE_NAME"
	EnvPIDFile     = "RELAY_PID_FILE"
	EnvKeepPIDFile = "RELAY_KEEP_PID_FILE"
	EnvEnvFile     = "RELAY_ENV_FILE"
	EnvDataDir     = "RELAY_DATA_DIR"
	EnvLogLevel    = "RELAY_LOG_LEVEL"
	EnvLogFormat   = "RELAY_LOG_FORMAT"
	EnvBootTrace   = "RELAY_BOOT_TRACE"
	EnvListenAddr  = "RELAY_LISTEN_ADDR"
	EnvPeers       = "RELAY_PEERS"
	EnvGCPercent   = "RELAY_GC_PERCENT"
	EnvMaxProcs    = "RELAY_MAX_PROCS"
	EnvPluginPath  = "RELAY_PLUGIN_PATH"
)

// ConfigError reports a problem with a resolved configuration value.
type ConfigError struct {
	// Key is the environment variable or file key at fault.
	Key string

	// Reason explains what is wrong with the value.
	Reason string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Resolver is the environment-resolution collaborator. It satisfies the boot
// sequencer's Environment surface and the delegated setup contract.
type Resolver struct {
	mu       sync.Mutex
	resolved bool

	// Getenv is swapped by tests. Nil means os.Getenv.
	Getenv func(string) string
}

// NewResolver returns a resolver reading the real process environment.
func NewResolver() *Resolver {
	return &Resolver{}
}

func (r *Resolver) getenv(key string) string {
	if r.Getenv != nil {
		return r.Getenv(key)
	}
	return os.Getenv(key)
}

// IdentityState reports whether Finalize has selected a node identity.
func (r *Resolver) IdentityState() boot.IdentityState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved {
		return boot.IdentityResolved
	}
	return boot.IdentityUnresolved
}

// ResolvePreLog reads the Context fields needed before diagnostics can be
// configured. Everything here comes straight from environment variables.
func (r *Resolver) ResolvePreLog() (*boot.Context, error) {
	ctx := &boot.Context{
		NodeName:   r.getenv(EnvNodeName),
		PIDFile:    r.getenv(EnvPIDFile),
		EnvFile:    r.getenv(EnvEnvFile),
		DataDir:    r.getenv(EnvDataDir),
		LogLevel:   r.getenv(EnvLogLevel),
		LogFormat:  r.getenv(EnvLogFormat),
		ListenAddr: r.getenv(EnvListenAddr),
	}
	if v := r.getenv(EnvKeepPIDFile); v != "" {
		ctx.KeepPIDFileOnExit = parseBool(v)
	}
	if v := r.getenv(EnvBootTrace); v != "" {
		ctx.TraceBoot = parseBool(v)
	}
	if v := r.getenv(EnvPeers); v != "" {
		ctx.Peers = splitList(v)
	}
	if v := r.getenv(EnvPluginPath); v != "" {
		ctx.PluginPaths = splitList(v)
	}
	if v := r.getenv(EnvGCPercent); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &ConfigError{Key: EnvGCPercent, Reason: "not an integer", Cause: err}
		}
		ctx.GCPercent = n
	}
	if v := r.getenv(EnvMaxProcs); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &ConfigError{Key: EnvMaxProcs, Reason: "not an integer", Cause: err}
		}
		ctx.MaxProcs = n
	}
	return ctx, nil
}

// envFile is the YAML shape of the environment file.
type envFile struct {
	NodeName    string            `yaml:"node_name"`
	PIDFile     string            `yaml:"pid_file"`
	KeepPIDFile *bool             `yaml:"keep_pid_file"`
	DataDir     string            `yaml:"data_dir"`
	LogLevel    string            `yaml:"log_level"`
	LogFormat   string            `yaml:"log_format"`
	ListenAddr  string            `yaml:"listen_addr"`
	Peers       []string          `yaml:"peers"`
	GCPercent   *int              `yaml:"gc_percent"`
	MaxProcs    *int              `yaml:"max_procs"`
	PluginPaths []string          `yaml:"plugin_paths"`
	Env         map[string]string `yaml:"env"`
}

// LoadEnvFile merges the environment file named by the Context into a new
// Context. Explicit environment values always win over file values; the file
// only fills in what the environment left unset.
func (r *Resolver) LoadEnvFile(ctx *boot.Context) (*boot.Context, error) {
	if ctx.EnvFile == "" {
		return ctx, nil
	}
	data, err := os.ReadFile(ctx.EnvFile)
	if err != nil {
		return nil, &ConfigError{Key: EnvEnvFile, Reason: "environment file unreadable", Cause: err}
	}
	var f envFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &ConfigError{Key: EnvEnvFile, Reason: "environment file is not valid YAML", Cause: err}
	}

	out := ctx.Clone()
	if out.NodeName == "" {
		out.NodeName = f.NodeName
	}
	if out.PIDFile == "" {
		out.PIDFile = f.PIDFile
	}
	if r.getenv(EnvKeepPIDFile) == "" && f.KeepPIDFile != nil {
		out.KeepPIDFileOnExit = *f.KeepPIDFile
	}
	if out.DataDir == "" {
		out.DataDir = f.DataDir
	}
	if out.LogLevel == "" {
		out.LogLevel = f.LogLevel
	}
	if out.LogFormat == "" {
		out.LogFormat = f.LogFormat
	}
	if out.ListenAddr == "" {
		out.ListenAddr = f.ListenAddr
	}
	if len(out.Peers) == 0 {
		out.Peers = append([]string(nil), f.Peers...)
	}
	if out.GCPercent == 0 && f.GCPercent != nil {
		out.GCPercent = *f.GCPercent
	}
	if out.MaxProcs == 0 && f.MaxProcs != nil {
		out.MaxProcs = *f.MaxProcs
	}
	if len(out.PluginPaths) == 0 {
		out.PluginPaths = append([]string(nil), f.PluginPaths...)
	}
	if len(f.Env) > 0 {
		if out.AppEnv == nil {
			out.AppEnv = make(map[string]string, len(f.Env))
		}
		for k, v := range f.Env {
			if _, ok := out.AppEnv[k]; !ok {
				out.AppEnv[k] = v
			}
		}
	}
	return out, nil
}

// Finalize completes the Context by selecting the node identity: the
// configured name, the hostname, or a generated one when neither is usable.
// After Finalize the resolver reports IdentityResolved for the rest of the
// process lifetime.
func (r *Resolver) Finalize(ctx *boot.Context) (*boot.Context, error) {
	out := ctx.Clone()
	if out.NodeName == "" {
		host, err := os.Hostname()
		if err == nil && host != "" {
			out.NodeName = host
		} else {
			out.NodeName = "relay-" + uuid.NewString()[:8]
		}
	}
	r.mu.Lock()
	r.resolved = true
	r.mu.Unlock()
	return out, nil
}

// ApplyRuntimeEnv exports the Context's application environment variables
// and appends its plugin search paths to the process plugin path.
func (r *Resolver) ApplyRuntimeEnv(ctx *boot.Context) error {
	for k, v := range ctx.AppEnv {
		if err := os.Setenv(k, v); err != nil {
			return &ConfigError{Key: k, Reason: "cannot export application variable", Cause: err}
		}
	}
	if len(ctx.PluginPaths) > 0 {
		joined := strings.Join(ctx.PluginPaths, string(os.PathListSeparator))
		if cur := os.Getenv(EnvPluginPath); cur != "" && cur != joined {
			joined = cur + string(os.PathListSeparator) + joined
		}
		if err := os.Setenv(EnvPluginPath, joined); err != nil {
			return &ConfigError{Key: EnvPluginPath, Reason: "cannot export plugin path", Cause: err}
		}
	}
	return nil
}

// Setup is the configuration setup step: it validates the finalized Context.
func (r *Resolver) Setup(ctx *boot.Context) error {
	if ctx.ListenAddr != "" {
		if _, _, err := net.SplitHostPort(ctx.ListenAddr); err != nil {
			return &ConfigError{Key: EnvListenAddr, Reason: "not a host:port address", Cause: err}
		}
	}
	if ctx.GCPercent < -1 {
		return &ConfigError{Key: EnvGCPercent, Reason: "must be -1 or greater"}
	}
	if ctx.MaxProcs < 0 {
		return &ConfigError{Key: EnvMaxProcs, Reason: "must not be negative"}
	}
	for _, p := range ctx.Peers {
		if strings.TrimSpace(p) == "" {
			return &ConfigError{Key: EnvPeers, Reason: "peer list contains an empty entry"}
		}
	}
	return nil
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
