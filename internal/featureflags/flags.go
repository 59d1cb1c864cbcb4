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

// Package featureflags provides runtime feature flag management for relayd.
package featureflags

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relaymq/relay/internal/boot"
)

// envPrefix is the prefix of feature-flag environment variables,
// e.g. RELAY_FF_STREAM_REPLICATION=1.
const envPrefix = "RELAY_FF_"

// Flags holds all feature flags with thread-safe access.
type Flags struct {
	mu sync.RWMutex

	// StreamReplication replicates streams to cluster peers.
	StreamReplication bool
	// DeliveryTracking records per-message delivery state.
	DeliveryTracking bool
	// LazyRetention defers retention sweeps to idle periods.
	LazyRetention bool
	// StrictPeerChecks refuses boot when a declared peer is unreachable.
	StrictPeerChecks bool
}

// knownFlags maps environment suffixes to setters.
var knownFlags = map[string]func(*Flags, bool){
	"STREAM_REPLICATION": func(f *Flags, v bool) { f.StreamReplication = v },
	"DELIVERY_TRACKING":  func(f *Flags, v bool) { f.DeliveryTracking = v },
	"LAZY_RETENTION":     func(f *Flags, v bool) { f.LazyRetention = v },
	"STRICT_PEER_CHECKS": func(f *Flags, v bool) { f.StrictPeerChecks = v },
}

var (
	globalFlags *Flags
	once        sync.Once
)

// Get returns the global feature flags instance.
func Get() *Flags {
	once.Do(func() {
		globalFlags = &Flags{
			StreamReplication: true,
			DeliveryTracking:  true,
			LazyRetention:     false,
			StrictPeerChecks:  false,
		}
		globalFlags.loadFromEnv(os.Environ())
	})
	return globalFlags
}

// loadFromEnv applies RELAY_FF_* overrides. Unknown flags are ignored here;
// Setup reports them as boot failures.
func (f *Flags) loadFromEnv(environ []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, envPrefix) {
			continue
		}
		if set, known := knownFlags[strings.TrimPrefix(k, envPrefix)]; known {
			set(f, parseBool(v))
		}
	}
}

// IsStreamReplicationEnabled returns whether stream replication is enabled.
func (f *Flags) IsStreamReplicationEnabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.StreamReplication
}

// IsDeliveryTrackingEnabled returns whether delivery tracking is enabled.
func (f *Flags) IsDeliveryTrackingEnabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.DeliveryTracking
}

// IsLazyRetentionEnabled returns whether lazy retention is enabled.
func (f *Flags) IsLazyRetentionEnabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.LazyRetention
}

// IsStrictPeerChecksEnabled returns whether strict peer checks are enabled.
func (f *Flags) IsStrictPeerChecksEnabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.StrictPeerChecks
}

// Setup is the feature-flag setup step: it loads the registry and rejects
// unknown RELAY_FF_ variables so a typo never silently disables a flag.
func Setup(_ *boot.Context) error {
	Get()
	return validateEnv(os.Environ())
}

func validateEnv(environ []string) error {
	for _, kv := range environ {
		k, _, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, envPrefix) {
			continue
		}
		if _, known := knownFlags[strings.TrimPrefix(k, envPrefix)]; !known {
			return fmt.Errorf("unknown feature flag %s", k)
		}
	}
	return nil
}

// parseBool converts a string to a boolean value.
// Accepts: "1", "t", "T", "true", "TRUE", "True"
func parseBool(val string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	return err == nil && b
}
