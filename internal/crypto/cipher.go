// Package crypto implements the authenticated encryption used for
// every secret at rest (credential passwords, note bodies).
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrDecryptFailed covers every decryption failure: tampered data,
// truncated blobs and wrong key material all report the same error so
// a caller cannot tell them apart.
var ErrDecryptFailed = errors.New("decryption failed")

// Cipher encrypts and decrypts secrets with AES-256-GCM. The AES key
// is derived from the injected key material with SHA-256; the key
// material itself comes from configuration and is never embedded in
// source. Cipher is stateless after construction and safe for
// concurrent use.
type Cipher struct {
	key [32]byte
}

// New derives the symmetric key from keyMaterial.
func New(keyMaterial string) (*Cipher, error) {
	if keyMaterial == "" {
		return nil, fmt.Errorf("empty key material")
	}
	return &Cipher{key: sha256.Sum256([]byte(keyMaterial))}, nil
}

// Encrypt seals plaintext under a fresh random 96-bit nonce and
// returns base64(nonce || ciphertext || tag). Two calls on the same
// plaintext never produce the same blob.
func (c *Cipher) Encrypt(plaintext []byte) (string, error) {
	gcm, err := c.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a blob produced by Encrypt. Any failure past decoding
// the cipher itself is reported as ErrDecryptFailed.
func (c *Cipher) Decrypt(blob string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, ErrDecryptFailed
	}

	gcm, err := c.gcm()
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(sealed) < nonceSize {
		return nil, ErrDecryptFailed
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}

	return plaintext, nil
}

func (c *Cipher) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key[:])
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return gcm, nil
}
