// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// errors.go — sentinel error variables returned by the public Koit API,
// covering codec failures and backend read/write/creation failures.

// Package koit provides a simple, structured, embedded database: one typed
// value held in memory behind a reader-writer lock, persisted to a pluggable
// byte backend through a pluggable codec.
package koit

import "errors"

// Codec errors
var (
	// ErrEncodeFailed means the in-memory value could not be turned into
	// bytes. Neither the value nor the backend was touched.
	ErrEncodeFailed = errors.New("koit: failed to encode value for storage")

	// ErrDecodeFailed means the bytes read from the backend could not be
	// turned into a value. The in-memory value is unchanged.
	ErrDecodeFailed = errors.New("koit: failed to decode stored bytes")
)

// Backend errors
var (
	// ErrBackendRead means the backend failed to return its bytes. No state
	// changed.
	ErrBackendRead = errors.New("koit: failed to read from the backend")

	// ErrBackendWrite means the backend failed to persist the bytes. The
	// previously stored content may now be partially overwritten; Koit does
	// not attempt to repair it.
	ErrBackendWrite = errors.New("koit: failed to write to the backend")

	// ErrBackendCreation means the backend could not be opened or created
	// during bootstrap. No database is produced.
	ErrBackendCreation = errors.New("koit: failed to create the backend")
)

// Config errors
var (
	ErrInvalidConfig = errors.New("koit: invalid configuration")
)
