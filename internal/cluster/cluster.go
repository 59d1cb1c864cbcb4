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

// Package cluster prepares clustering state during boot. Setup runs after
// the transport step, so it is the point where the embedded metadata store
// may legitimately come back up.
package cluster

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/relaymq/relay/internal/boot"
	"github.com/relaymq/relay/internal/metadb"
)

// MembershipError reports an inconsistent peer declaration.
type MembershipError struct {
	// Peer is the offending peer entry.
	Peer string

	// Reason explains the inconsistency.
	Reason string
}

// Error implements the error interface.
func (e *MembershipError) Error() string {
	return fmt.Sprintf("cluster membership error for %q: %s", e.Peer, e.Reason)
}

// Setup validates the declared peer set against the local node identity and
// records the resulting membership in the metadata store.
func Setup(ctx *boot.Context) error {
	seen := make(map[string]struct{}, len(ctx.Peers))
	for _, peer := range ctx.Peers {
		peer = strings.TrimSpace(peer)
		if peer == "" {
			return &MembershipError{Peer: peer, Reason: "empty peer entry"}
		}
		if peer == ctx.NodeName {
			return &MembershipError{Peer: peer, Reason: "peer list names this node"}
		}
		if _, dup := seen[peer]; dup {
			return &MembershipError{Peer: peer, Reason: "duplicate peer entry"}
		}
		seen[peer] = struct{}{}
	}

	st, err := metadb.Default(storePath(ctx))
	if err != nil {
		return fmt.Errorf("cluster metadata store: %w", err)
	}
	if err := st.Put("cluster/node", ctx.NodeName); err != nil {
		return err
	}
	return st.Put("cluster/peers", strings.Join(ctx.Peers, ","))
}

// Membership returns the node name and peer list recorded by the last
// successful Setup.
func Membership(ctx *boot.Context) (node string, peers []string, err error) {
	st, err := metadb.Default(storePath(ctx))
	if err != nil {
		return "", nil, err
	}
	node, _, err = st.Get("cluster/node")
	if err != nil {
		return "", nil, err
	}
	joined, ok, err := st.Get("cluster/peers")
	if err != nil {
		return "", nil, err
	}
	if ok && joined != "" {
		peers = strings.Split(joined, ",")
	}
	return node, peers, nil
}

func storePath(ctx *boot.Context) string {
	if ctx.DataDir == "" {
		return ""
	}
	return filepath.Join(ctx.DataDir, "meta.db")
}
