package koit_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomcur/koit"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

// ── Encryptor unit behaviour ─────────────────────────────────────────────────

func TestXChaCha20Poly1305_RoundTrip(t *testing.T) {
	enc, err := koit.NewXChaCha20Poly1305(testKey(1))
	require.NoError(t, err)

	ct, err := enc.Encrypt([]byte("the payload"))
	require.NoError(t, err)
	assert.NotContains(t, string(ct), "the payload")

	pt, err := enc.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "the payload", string(pt))
}

func TestXChaCha20Poly1305_NoncesDiffer(t *testing.T) {
	enc, err := koit.NewXChaCha20Poly1305(testKey(1))
	require.NoError(t, err)

	a, err := enc.Encrypt([]byte("same input"))
	require.NoError(t, err)
	b, err := enc.Encrypt([]byte("same input"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestXChaCha20Poly1305_WrongKey(t *testing.T) {
	enc1, err := koit.NewXChaCha20Poly1305(testKey(1))
	require.NoError(t, err)
	enc2, err := koit.NewXChaCha20Poly1305(testKey(2))
	require.NoError(t, err)

	ct, err := enc1.Encrypt([]byte("secret"))
	require.NoError(t, err)

	_, err = enc2.Decrypt(ct)
	assert.Error(t, err)
}

func TestXChaCha20Poly1305_TruncatedCiphertext(t *testing.T) {
	enc, err := koit.NewXChaCha20Poly1305(testKey(1))
	require.NoError(t, err)

	_, err = enc.Decrypt([]byte("way too short"))
	assert.Error(t, err)
}

func TestNewXChaCha20Poly1305_BadKeyLength(t *testing.T) {
	_, err := koit.NewXChaCha20Poly1305([]byte("short key"))
	assert.Error(t, err)
}

// ── Database-level at-rest encryption ────────────────────────────────────────

func TestFromParts_InvalidEncryptionKey(t *testing.T) {
	_, err := koit.FromParts(counters{}, koit.NewMemory(nil), koit.Config{
		EncryptionKey: []byte("too short"),
	})
	assert.ErrorIs(t, err, koit.ErrInvalidConfig)
}

func TestSave_EncryptsPayloadAtRest(t *testing.T) {
	mem := koit.NewMemory(nil)
	db, err := koit.FromParts(counters{Cats: 10}, mem, koit.Config{
		EncryptionKey: testKey(1),
	})
	require.NoError(t, err)
	require.NoError(t, db.Save(context.Background()))

	// The stored bytes must not leak the plaintext JSON.
	stored := mem.Take()
	assert.NotEmpty(t, stored)
	assert.NotContains(t, string(stored), "cats")
}

func TestSaveReload_EncryptedRoundTrip(t *testing.T) {
	mem := koit.NewMemory(nil)
	ctx := context.Background()
	cfg := koit.Config{EncryptionKey: testKey(1)}

	db, err := koit.FromParts(counters{Cats: 10, Yaks: 32}, mem, cfg)
	require.NoError(t, err)
	require.NoError(t, db.Save(ctx))

	db2, err := koit.FromParts(counters{}, mem, cfg)
	require.NoError(t, err)
	_, err = db2.Reload(ctx)
	require.NoError(t, err)

	db2.Read(func(c *counters) {
		assert.Equal(t, counters{Cats: 10, Yaks: 32}, *c)
	})
}

func TestReload_WrongEncryptionKey(t *testing.T) {
	mem := koit.NewMemory(nil)
	ctx := context.Background()

	db, err := koit.FromParts(counters{Cats: 1}, mem, koit.Config{EncryptionKey: testKey(1)})
	require.NoError(t, err)
	require.NoError(t, db.Save(ctx))

	db2, err := koit.FromParts(counters{Cats: 7}, mem, koit.Config{EncryptionKey: testKey(2)})
	require.NoError(t, err)

	_, reloadErr := db2.Reload(ctx)
	assert.ErrorIs(t, reloadErr, koit.ErrDecodeFailed)

	// The in-memory value survives the failed reload.
	db2.Read(func(c *counters) {
		assert.Equal(t, counters{Cats: 7}, *c)
	})
}

func TestLoadFromPathOrDefault_Encrypted(t *testing.T) {
	path := tmpPath(t)
	ctx := context.Background()
	cfg := koit.Config{EncryptionKey: testKey(3)}

	db, err := koit.LoadFromPathOrDefault[counters](ctx, path, cfg)
	require.NoError(t, err)
	db.Write(func(c *counters) { c.Cats = 5 })
	require.NoError(t, db.Save(ctx))
	require.NoError(t, db.Close())

	db2, err := koit.LoadFromPath[counters](ctx, path, cfg)
	require.NoError(t, err)
	defer db2.Close()

	db2.Read(func(c *counters) {
		assert.Equal(t, uint64(5), c.Cats)
	})
}
