// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// crypto.go — XChaCha20-Poly1305 at-rest encryption helpers used by Koit to
// protect the encoded payload before it is handed to the backend. Enabled by
// setting Config.EncryptionKey.

package koit

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Encryptor encrypts and decrypts the encoded payload before it reaches the
// backend and after it is read back.
type Encryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// XChaCha20Poly1305 implements authenticated encryption with an extended
// (24-byte) nonce, so random nonces are safe for any number of payloads.
type XChaCha20Poly1305 struct {
	aead cipher.AEAD
}

// NewXChaCha20Poly1305 creates an encryptor from a 32-byte key.
func NewXChaCha20Poly1305(key []byte) (*XChaCha20Poly1305, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("koit: encryption key must be exactly %d bytes (got %d)",
			chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &XChaCha20Poly1305{aead: aead}, nil
}

// Encrypt encrypts plaintext with a random nonce.
// Output: nonce (24 bytes) || ciphertext.
func (e *XChaCha20Poly1305) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	// io.ReadFull on rand.Reader (backed by /dev/urandom on Linux) never
	// returns an error in practice.  The branch exists for correctness on
	// exotic platforms or future OS changes.
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt decrypts ciphertext produced by Encrypt.
func (e *XChaCha20Poly1305) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("koit: ciphertext too short")
	}
	nonce, sealed := ciphertext[:chacha20poly1305.NonceSizeX], ciphertext[chacha20poly1305.NonceSizeX:]
	return e.aead.Open(nil, nonce, sealed, nil)
}
