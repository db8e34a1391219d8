// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// file.go — file-backed Backend implementation: open / open-or-create
// constructors and the seek-truncate-write-fsync persistence path.

package koit

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
)

// File is a Backend that externalizes the bytes to a single file. It owns
// the open file handle for its lifetime; do not construct two File backends
// over the same path concurrently.
//
// Write is deliberately not crash-atomic: it truncates in place rather than
// writing to a temporary file and renaming, so a failure mid-write can leave
// a truncated file behind. The Database reports this as ErrBackendWrite and
// makes no attempt to repair it.
type File struct {
	f *os.File
}

// OpenFile opens the file at path for reading and writing. It fails if the
// file does not exist.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &File{f: f}, nil
}

// OpenOrCreateFile opens the file at path, creating it empty if absent. The
// second return value reports whether the file pre-existed, so the caller
// can decide whether to seed default content.
func OpenOrCreateFile(path string) (*File, bool, error) {
	backend, err := OpenFile(path)
	if err == nil {
		return backend, true, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, false, err
	}
	return &File{f: f}, false, nil
}

// Read seeks to the start of the file and reads until end-of-file.
func (b *File) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := b.f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(b.f)
}

// Write seeks to the start, truncates the file to zero length, writes all of
// data, and forces it to durable storage before returning.
func (b *File) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := b.f.Truncate(0); err != nil {
		return err
	}
	if _, err := b.f.Write(data); err != nil {
		return err
	}
	return b.f.Sync()
}

// Close releases the underlying file handle. The backend must not be used
// afterwards.
func (b *File) Close() error {
	return b.f.Close()
}
