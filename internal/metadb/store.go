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

// Package metadb is the embedded metadata store backing cluster
// bookkeeping. Upstream subsystems open the process-wide default store as a
// side effect before the cluster transport is configured; in that state the
// store is non-functional for cluster purposes, so the boot sequencer stops
// it with StopDefault before the delegated setup steps run. The cluster
// setup step reopens it once the transport is in place.
package metadb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS relay_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// Store is a key/value metadata store backed by an embedded sqlite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens a store at path. An empty path selects an in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create metadata directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create metadata schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO relay_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Get returns the value stored under key, and whether it was present.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM relay_meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var (
	defaultMu    sync.Mutex
	defaultStore *Store
)

// Default returns the process-wide store, opening it at path if it is not
// already running. The path only matters on the call that opens the store.
func Default(path string) (*Store, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultStore != nil {
		return defaultStore, nil
	}
	st, err := Open(path)
	if err != nil {
		return nil, err
	}
	defaultStore = st
	return st, nil
}

// DefaultRunning reports whether the process-wide store is open.
func DefaultRunning() bool {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultStore != nil
}

// StopDefault closes the process-wide store if it is running. Stopping an
// already-stopped store is a no-op, so the boot sequencer can call this on
// every pass.
func StopDefault() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultStore == nil {
		return nil
	}
	err := defaultStore.Close()
	defaultStore = nil
	return err
}
