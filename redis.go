// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// redis.go — Redis-backed Backend implementation storing the whole encoded
// payload under a single key.

package koit

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis is a Backend that stores the byte sequence as the value of a single
// Redis key. The key is written without a TTL; the payload lives until the
// next Write replaces it.
type Redis struct {
	client redis.UniversalClient
	key    string
}

// NewRedis creates a Redis backend over an existing client. The backend does
// not take ownership of the client; closing it is the caller's job.
func NewRedis(client redis.UniversalClient, key string) *Redis {
	return &Redis{client: client, key: key}
}

// Read returns the stored bytes. A missing key reads as empty bytes, so a
// fresh backend behaves like an empty file.
func (b *Redis) Read(ctx context.Context) ([]byte, error) {
	raw, err := b.client.Get(ctx, b.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []byte{}, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Write replaces the stored bytes with a single SET.
func (b *Redis) Write(ctx context.Context, data []byte) error {
	return b.client.Set(ctx, b.key, data, 0).Err()
}
