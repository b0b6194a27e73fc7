// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package snapshot

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/deptrace/pkg/deps"
)

// keyPrefix namespaces snapshot keys inside the database.
const keyPrefix = "snapshot/"

// Config holds configuration for a snapshot store.
type Config struct {
	// Path is the directory for the database files.
	// Required for persistent stores. Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives the database's internal log output.
	// If nil, internal logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults for production use.
func DefaultConfig() Config {
	return Config{
		SyncWrites: true,
	}
}

// InMemoryConfig returns configuration optimized for testing.
func InMemoryConfig() Config {
	return Config{
		InMemory:   true,
		SyncWrites: false,
	}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// envelope wraps a payload with its checksum for corruption detection.
type envelope struct {
	Checksum string          `json:"checksum"`
	Payload  json.RawMessage `json:"payload"`
}

// Store persists named Relations snapshots in an embedded BadgerDB.
//
// Thread Safety: All methods are safe for concurrent use.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open creates and opens a snapshot store with the given configuration.
//
// Description:
//
//	Opens a BadgerDB at the configured path, or in memory if InMemory is
//	true. Creates the directory if it doesn't exist.
//
// Inputs:
//
//	cfg - Store configuration. Path is required unless InMemory is true.
//
// Outputs:
//
//	*Store - The opened store. Caller must call Close() when done.
//	error - Non-nil if path is invalid or the database cannot be opened.
//
// Thread Safety: The returned Store is safe for concurrent use.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	return &Store{db: db, logger: cfg.Logger}, nil
}

// Close closes the underlying database. Safe to call once.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists rel under name, replacing any previous snapshot.
//
// Inputs:
//
//	ctx - Checked before the write transaction starts.
//	name - Snapshot name. Must be non-empty.
//	rel - The relations to persist.
//
// Outputs:
//
//	error - Non-nil on encoding or database failure.
//
// Thread Safety: Safe for concurrent use.
func (s *Store) Save(ctx context.Context, name string, rel deps.Relations) (err error) {
	start := time.Now()
	defer func() { recordOp(ctx, "save", time.Since(start), err == nil) }()

	if name == "" {
		return errors.New("snapshot name must not be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := Encode(rel)
	if err != nil {
		return err
	}
	env := envelope{
		Checksum: hex.EncodeToString(Checksum(payload)),
		Payload:  payload,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode snapshot envelope: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+name), value)
	})
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", name, err)
	}

	if s.logger != nil {
		s.logger.Debug("snapshot saved",
			slog.String("name", name),
			slog.Int("bytes", len(value)),
			slog.Int("edges", rel.EdgeCount()),
		)
	}
	return nil
}

// Load reads the snapshot stored under name.
//
// Description:
//
//	Verifies the stored checksum against the payload before decoding, so
//	bit rot surfaces as ErrChecksumMismatch rather than silently wrong
//	relations.
//
// Inputs:
//
//	ctx - Checked before the read transaction starts.
//	name - Snapshot name.
//
// Outputs:
//
//	deps.Relations - The stored relations.
//	error - ErrNotFound if no snapshot exists under name;
//	ErrChecksumMismatch or ErrCorrupt for damaged data.
//
// Thread Safety: Safe for concurrent use.
func (s *Store) Load(ctx context.Context, name string) (rel deps.Relations, err error) {
	start := time.Now()
	defer func() { recordOp(ctx, "load", time.Since(start), err == nil) }()

	if err := ctx.Err(); err != nil {
		return deps.Empty(), err
	}

	var value []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + name))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return deps.Empty(), fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return deps.Empty(), fmt.Errorf("load snapshot %q: %w", name, err)
	}

	var env envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return deps.Empty(), fmt.Errorf("%w: bad envelope for %q: %v", ErrCorrupt, name, err)
	}
	if got := hex.EncodeToString(Checksum(env.Payload)); got != env.Checksum {
		return deps.Empty(), fmt.Errorf("%w: %q: stored %s, computed %s",
			ErrChecksumMismatch, name, env.Checksum, got)
	}

	rel, err = Decode(env.Payload)
	if err != nil {
		return deps.Empty(), fmt.Errorf("snapshot %q: %w", name, err)
	}
	return rel, nil
}

// List returns the names of all stored snapshots in sorted order.
//
// Thread Safety: Safe for concurrent use.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names := []string{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			names = append(names, key[len(keyPrefix):])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	sort.Strings(names)
	return names, nil
}

// Delete removes the snapshot stored under name.
//
// Outputs:
//
//	error - ErrNotFound if no snapshot exists under name.
//
// Thread Safety: Safe for concurrent use.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		key := []byte(keyPrefix + name)
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", name, err)
	}
	return nil
}
