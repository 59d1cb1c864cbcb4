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

// Package transport brings up the cluster transport during boot: it binds
// the listener and constructs the gRPC server. Serving starts later, under
// the daemon's supervision machinery; boot only establishes the resources.
package transport

import (
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc"

	"github.com/relaymq/relay/internal/boot"
)

// Server owns the cluster listener and the gRPC server built during boot.
type Server struct {
	ln  net.Listener
	srv *grpc.Server
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// GRPC returns the gRPC server for service registration and serving.
func (s *Server) GRPC() *grpc.Server {
	return s.srv
}

// Close stops the gRPC server and the listener.
func (s *Server) Close() error {
	s.srv.Stop()
	return s.ln.Close()
}

var (
	mu      sync.Mutex
	current *Server
)

// Setup is the distributed-transport setup step. A Context without a listen
// address leaves the transport disabled.
func Setup(ctx *boot.Context) error {
	if ctx.ListenAddr == "" {
		return nil
	}
	ln, err := net.Listen("tcp", ctx.ListenAddr)
	if err != nil {
		return fmt.Errorf("bind cluster listener on %s: %w", ctx.ListenAddr, err)
	}
	srv := &Server{ln: ln, srv: grpc.NewServer()}

	mu.Lock()
	prev := current
	current = srv
	mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// Current returns the transport built by the last successful Setup, or nil
// when the transport is disabled.
func Current() *Server {
	mu.Lock()
	defer mu.Unlock()
	return current
}
