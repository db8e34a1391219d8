// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// backend.go — Backend interface for whole-content byte persistence and the
// in-memory Memory implementation.

package koit

import (
	"bytes"
	"context"
)

// Backend is implementable by byte storage providers. A backend stores one
// byte sequence; Read returns all of it, Write replaces all of it.
//
// The Database serializes every backend call through its own mutex, so
// implementations do not need internal locking for use under a Database.
type Backend interface {
	// Read returns the entirety of the stored bytes. An empty (or nil)
	// slice means nothing has been written yet.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored content with data. On success the next
	// Read returns exactly data; on failure the stored content may be the
	// old bytes or corrupted, and the error says so.
	Write(ctx context.Context, data []byte) error
}

// Memory is an in-memory backend backed by a plain byte buffer. Its Read and
// Write never fail. Concurrent standalone use (outside a Database) needs
// external synchronization.
type Memory struct {
	buf []byte
}

// NewMemory creates a Memory backend seeded with buf. The backend takes
// ownership of buf; pass nil for an empty backend.
func NewMemory(buf []byte) *Memory {
	return &Memory{buf: buf}
}

// Read returns a copy of the stored bytes.
func (m *Memory) Read(_ context.Context) ([]byte, error) {
	return bytes.Clone(m.buf), nil
}

// Write replaces the stored bytes outright. The backend takes ownership of
// data.
func (m *Memory) Write(_ context.Context, data []byte) error {
	m.buf = data
	return nil
}

// Take moves the stored bytes out of the backend, leaving it empty.
func (m *Memory) Take() []byte {
	buf := m.buf
	m.buf = nil
	return buf
}
