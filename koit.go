// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// koit.go — the Database engine: a reader-writer lock over the typed value,
// a mutex over the backend, and the read/write/replace/save/reload protocol
// that ties value, codec, and backend together.

package koit

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/tomcur/koit/internal/clock"
	"github.com/tomcur/koit/internal/codec"
	"github.com/tomcur/koit/internal/metrics"
)

// Re-export types so callers only import this package.
type Codec = codec.Codec
type MetricsRecorder = metrics.MetricsRecorder

// Ready-made codec instances for Config.Codec.
var (
	JSONCodec    Codec = codec.JSON{}
	MsgPackCodec Codec = codec.MsgPack{}
	YAMLCodec    Codec = codec.YAML{}
)

// ────────────────────────────────────────────────────────────────────────────
// Config
// ────────────────────────────────────────────────────────────────────────────

// Config contains all optional Database configuration. The zero value is
// valid: pretty-printed JSON, no encryption, noop logging and metrics.
type Config struct {
	// Codec converts the value to and from bytes. Defaults to codec.JSON.
	Codec Codec

	// EncryptionKey enables at-rest encryption of the encoded payload
	// (must be 32 bytes for XChaCha20-Poly1305; nil = disabled).
	EncryptionKey []byte

	// Optional overrideable components
	Logger  Logger
	Metrics MetricsRecorder
	Clock   clock.Clock
}

func (c *Config) defaults() {
	if c.Codec == nil {
		c.Codec = codec.JSON{}
	}
	if c.Logger == nil {
		c.Logger = noopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = metrics.Noop{}
	}
	if c.Clock == nil {
		c.Clock = clock.Real{}
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Stats
// ────────────────────────────────────────────────────────────────────────────

type dbStats struct {
	Reads   atomic.Int64
	Writes  atomic.Int64
	Saves   atomic.Int64
	Reloads atomic.Int64
	Errors  atomic.Int64
}

// Stats is the snapshot returned by Database.Stats().
type Stats struct {
	Reads   int64
	Writes  int64
	Saves   int64
	Reloads int64
	Errors  int64
}

// ────────────────────────────────────────────────────────────────────────────
// Database
// ────────────────────────────────────────────────────────────────────────────

// Database is the main entry-point for the Koit library. It holds exactly
// one value of type D and one Backend. The value sits behind a reader-writer
// lock: any number of Read calls proceed concurrently, while Write, Replace,
// and the swap step of Reload take exclusive access. The backend sits behind
// its own mutex, so backend I/O is fully serialized.
//
// Lock order, everywhere both locks are needed: backend mutex first, value
// lock second — and the value lock is held only long enough to encode a
// snapshot or swap, never across backend I/O.
type Database[D any] struct {
	mu   sync.RWMutex // guards data
	data D

	backendMu sync.Mutex // guards backend; acquired before mu
	backend   Backend

	codec     Codec
	encryptor Encryptor
	logger    Logger
	metrics   MetricsRecorder
	clock     clock.Clock
	stats     dbStats
}

// FromParts creates a database from an already-available value and backend.
// No I/O happens; the backend content is left as-is until Save or Reload.
func FromParts[D any](data D, backend Backend, cfg Config) (*Database[D], error) {
	cfg.defaults()

	db := &Database[D]{
		data:    data,
		backend: backend,
		codec:   cfg.Codec,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		clock:   cfg.Clock,
	}

	if len(cfg.EncryptionKey) > 0 {
		enc, err := NewXChaCha20Poly1305(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		db.encryptor = enc
	}

	return db, nil
}

// ────────────────────────────────────────────────────────────────────────────
// Read / Write / Replace
// ────────────────────────────────────────────────────────────────────────────

// Read calls fn with shared access to the value. Any number of concurrent
// Read calls proceed together. fn must not retain the pointer after it
// returns.
func (db *Database[D]) Read(fn func(data *D)) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	db.stats.Reads.Add(1)
	fn(&db.data)
}

// ReadCtx is like Read, except fn may itself perform further blocking work
// (I/O, channel waits) while the shared lock is held. A stalled fn stalls
// every later operation that needs exclusive access.
func (db *Database[D]) ReadCtx(ctx context.Context, fn func(ctx context.Context, data *D) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	db.stats.Reads.Add(1)
	return fn(ctx, &db.data)
}

// Write calls fn with exclusive, in-place access to the value. No other read
// or write proceeds until fn returns.
func (db *Database[D]) Write(fn func(data *D)) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.stats.Writes.Add(1)
	fn(&db.data)
}

// WriteCtx is like Write, except fn may itself perform further blocking work
// while the exclusive lock is held.
func (db *Database[D]) WriteCtx(ctx context.Context, fn func(ctx context.Context, data *D) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.stats.Writes.Add(1)
	return fn(ctx, &db.data)
}

// Replace swaps newData into the database and returns the previous value.
func (db *Database[D]) Replace(newData D) D {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.stats.Writes.Add(1)
	old := db.data
	db.data = newData
	return old
}

// ReadTyped calls fn with shared access to the value and returns fn's
// result. It exists because methods cannot introduce extra type parameters.
func ReadTyped[D, R any](db *Database[D], fn func(data *D) R) R {
	var out R
	db.Read(func(data *D) { out = fn(data) })
	return out
}

// WriteTyped calls fn with exclusive access to the value and returns fn's
// result.
func WriteTyped[D, R any](db *Database[D], fn func(data *D) R) R {
	var out R
	db.Write(func(data *D) { out = fn(data) })
	return out
}

// ────────────────────────────────────────────────────────────────────────────
// Save / Reload
// ────────────────────────────────────────────────────────────────────────────

// Save encodes the current value and writes the bytes to the backend. The
// value is snapshot under the shared lock, so concurrent Reads keep
// proceeding while the backend write runs; other Saves and Reloads are
// excluded for the whole call.
//
// On ErrEncodeFailed the backend was not touched. On ErrBackendWrite the
// in-memory value is intact but the stored bytes may be corrupted (see
// Backend.Write). Koit never retries; that decision is the caller's.
func (db *Database[D]) Save(ctx context.Context) error {
	db.backendMu.Lock()
	defer db.backendMu.Unlock()
	start := db.clock.Now()

	db.mu.RLock()
	payload, err := db.codec.Marshal(&db.data)
	db.mu.RUnlock()
	if err != nil {
		db.fail("save")
		return fmt.Errorf("%w: %w", ErrEncodeFailed, err)
	}

	if db.encryptor != nil {
		payload, err = db.encryptor.Encrypt(payload)
		if err != nil {
			db.fail("save")
			return fmt.Errorf("%w: %w", ErrEncodeFailed, err)
		}
	}

	if err := db.backend.Write(ctx, payload); err != nil {
		db.fail("save")
		return fmt.Errorf("%w: %w", ErrBackendWrite, err)
	}

	db.stats.Saves.Add(1)
	db.metrics.RecordLatency("save", db.clock.Now().Sub(start))
	db.logger.Debug("koit: saved", "codec", db.codec.Name(), "bytes", len(payload))
	return nil
}

// loadFromBackend reads and decodes the backend content without touching the
// in-memory value. Callers must not hold the backend mutex.
func (db *Database[D]) loadFromBackend(ctx context.Context) (D, error) {
	var decoded D

	db.backendMu.Lock()
	raw, err := db.backend.Read(ctx)
	db.backendMu.Unlock()
	if err != nil {
		return decoded, fmt.Errorf("%w: %w", ErrBackendRead, err)
	}

	if db.encryptor != nil {
		// A decrypt failure means the stored bytes are corrupt or were
		// written under a different key; both read as undecodable.
		raw, err = db.encryptor.Decrypt(raw)
		if err != nil {
			return decoded, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
		}
	}

	if err := db.codec.Unmarshal(raw, &decoded); err != nil {
		return decoded, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	return decoded, nil
}

// Reload reads the backend, decodes its content, swaps the decoded value in,
// and returns the previous value. If the read or decode fails, the in-memory
// value is left completely unchanged and the error is returned.
func (db *Database[D]) Reload(ctx context.Context) (D, error) {
	start := db.clock.Now()

	fresh, err := db.loadFromBackend(ctx)
	if err != nil {
		var zero D
		db.fail("reload")
		return zero, err
	}

	old := db.Replace(fresh)
	db.stats.Reloads.Add(1)
	db.metrics.RecordLatency("reload", db.clock.Now().Sub(start))
	db.logger.Debug("koit: reloaded", "codec", db.codec.Name())
	return old, nil
}

func (db *Database[D]) fail(op string) {
	db.stats.Errors.Add(1)
	db.metrics.RecordError(op)
}

// ────────────────────────────────────────────────────────────────────────────
// Lifecycle
// ────────────────────────────────────────────────────────────────────────────

// IntoParts returns the database's value and backend. The database must not
// be used afterwards. Durability is the caller's responsibility: IntoParts
// does not save.
func (db *Database[D]) IntoParts() (D, Backend) {
	return db.data, db.backend
}

// Close releases the backend if it holds resources (File does). The database
// must not be used afterwards. Close does not save.
func (db *Database[D]) Close() error {
	if c, ok := db.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Stats returns a snapshot of operational counters.
func (db *Database[D]) Stats() Stats {
	return Stats{
		Reads:   db.stats.Reads.Load(),
		Writes:  db.stats.Writes.Load(),
		Saves:   db.stats.Saves.Load(),
		Reloads: db.stats.Reloads.Load(),
		Errors:  db.stats.Errors.Load(),
	}
}

// ────────────────────────────────────────────────────────────────────────────
// File-backed constructors
// ────────────────────────────────────────────────────────────────────────────

// LoadFromPath opens the file at path and decodes the database value from
// it. It fails if the file is missing (ErrBackendCreation) or its content
// does not decode (ErrBackendRead / ErrDecodeFailed); no database is
// produced in that case.
func LoadFromPath[D any](ctx context.Context, path string, cfg Config) (*Database[D], error) {
	backend, err := OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendCreation, err)
	}

	var zero D
	db, err := FromParts(zero, backend, cfg)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	data, err := db.loadFromBackend(ctx)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	db.data = data

	db.logger.Debug("koit: loaded", "path", path, "codec", db.codec.Name())
	return db, nil
}

// LoadFromPathOrElse opens the file at path, creating it if absent. If the
// file pre-existed its content is decoded; otherwise factory() produces the
// initial value. Either way the value is saved to the file before the
// database is returned, so a freshly created file is never left empty.
func LoadFromPathOrElse[D any](ctx context.Context, path string, factory func() D, cfg Config) (*Database[D], error) {
	backend, existed, err := OpenOrCreateFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendCreation, err)
	}

	var zero D
	db, err := FromParts(zero, backend, cfg)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	if existed {
		data, err := db.loadFromBackend(ctx)
		if err != nil {
			_ = backend.Close()
			return nil, err
		}
		db.data = data
	} else {
		db.data = factory()
	}

	if err := db.Save(ctx); err != nil {
		_ = backend.Close()
		return nil, err
	}

	db.logger.Debug("koit: loaded", "path", path, "pre_existed", existed)
	return db, nil
}

// LoadFromPathOrDefault is LoadFromPathOrElse with the zero value of D as
// the initial value.
func LoadFromPathOrDefault[D any](ctx context.Context, path string, cfg Config) (*Database[D], error) {
	return LoadFromPathOrElse(ctx, path, func() D { var d D; return d }, cfg)
}
