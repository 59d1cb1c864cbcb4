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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/relaymq/relay/internal/boot"
	"github.com/relaymq/relay/internal/cluster"
	"github.com/relaymq/relay/internal/config"
	"github.com/relaymq/relay/internal/featureflags"
	relaylog "github.com/relaymq/relay/internal/log"
	"github.com/relaymq/relay/internal/metadb"
	"github.com/relaymq/relay/internal/runtimetune"
	"github.com/relaymq/relay/internal/tracing"
	"github.com/relaymq/relay/internal/transport"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envFile     string
		showVersion bool
	)
	cmd := &cobra.Command{
		Use:           "relayd",
		Short:         "relayd is the relay message mesh daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Printf("relayd %s (commit: %s, built: %s)\n", version, commit, buildDate)
				return nil
			}
			if envFile != "" {
				if err := os.Setenv(config.EnvEnvFile, envFile); err != nil {
					return err
				}
			}
			return runDaemon()
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to the YAML environment file")
	cmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	return cmd
}

// runDaemon wires the boot collaborators, runs the boot sequence, and then
// blocks until a termination signal fires the shutdown hooks.
func runDaemon() error {
	resolver := config.NewResolver()
	hooks := boot.NewHookRegistry()

	seq := &boot.Sequencer{
		Env:  resolver,
		Diag: relaylog.Diag{},
		Steps: boot.Collaborators{
			FeatureFlags: featureflags.Setup,
			Config:       resolver.Setup,
			Diagnostics:  relaylog.Setup,
			RuntimeTune:  runtimetune.Setup,
			Transport:    transport.Setup,
			Cluster:      cluster.Setup,
			StopMetaDB:   metadb.StopDefault,
		},
		Store:     boot.NewContextStore(),
		Hooks:     hooks,
		PIDFiles:  &boot.PIDFileManager{},
		Reporter:  &boot.CrashReporter{},
		TraceInit: initBootTrace,
	}

	if _, err := seq.Run(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	hooks.Fire(sig.String())
	return nil
}

// initBootTrace enables low-level boot tracing when RELAY_BOOT_TRACE is set.
// The Context does not exist yet at this point, so the switch is read
// straight from the environment.
func initBootTrace() error {
	switch os.Getenv(config.EnvBootTrace) {
	case "", "0", "false":
		return nil
	}
	_, err := tracing.Init(os.Stderr, version)
	return err
}
