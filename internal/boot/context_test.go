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
	"testing"
)

func TestContextStoreSetOnce(t *testing.T) {
	s := NewContextStore()

	if _, ok := s.Get(); ok {
		t.Error("Get() on empty store reported a context")
	}

	first := &Context{NodeName: "node-a"}
	if err := s.Set(first); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(&Context{NodeName: "node-b"}); !errors.Is(err, ErrContextStored) {
		t.Errorf("second Set() error = %v, want ErrContextStored", err)
	}

	got, ok := s.Get()
	if !ok || got != first {
		t.Errorf("Get() = %v, %v; want the first stored context", got, ok)
	}
}

func TestContextClone(t *testing.T) {
	orig := &Context{
		NodeName:    "node-a",
		AppEnv:      map[string]string{"A": "1"},
		PluginPaths: []string{"/p1"},
		Peers:       []string{"node-b"},
	}
	cp := orig.Clone()

	cp.AppEnv["B"] = "2"
	cp.PluginPaths[0] = "/other"
	cp.Peers = append(cp.Peers, "node-c")
	cp.NodeName = "node-z"

	if orig.NodeName != "node-a" {
		t.Error("Clone() shares the name field")
	}
	if _, leaked := orig.AppEnv["B"]; leaked {
		t.Error("Clone() shares the AppEnv map")
	}
	if orig.PluginPaths[0] != "/p1" {
		t.Error("Clone() shares the PluginPaths slice")
	}
	if len(orig.Peers) != 1 {
		t.Error("Clone() shares the Peers slice")
	}
}
