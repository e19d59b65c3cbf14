// Package crypto encrypts repository access tokens at rest.
//
// Tokens are sealed with XChaCha20-Poly1305. The AEAD key is derived from
// the configured secret with HKDF-SHA256, so any secret length of at least
// MinSecretLength bytes is accepted. The stored form is
// "v1:" + base64(nonce || ciphertext).
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.CredentialCipher = (*Cipher)(nil)

const (
	// MinSecretLength is the shortest accepted secret.
	MinSecretLength = 32

	prefix  = "v1:"
	hkdfTag = "docsync repository token v1"
)

// ErrKeyNotConfigured is returned when the secret is missing or too short.
var ErrKeyNotConfigured = errors.New("encryption key not configured")

// Cipher implements driven.CredentialCipher.
type Cipher struct {
	aead cipher.AEAD
}

// New derives a cipher from secret.
func New(secret string) (*Cipher, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrKeyNotConfigured, MinSecretLength)
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfTag)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create aead: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext. Empty input yields an empty string.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+chacha20poly1305.Overhead)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return prefix + base64.RawStdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	encoded, ok := strings.CutPrefix(ciphertext, prefix)
	if !ok {
		return "", fmt.Errorf("%w: unknown format", domain.ErrDecryptionFailed)
	}
	raw, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecryptionFailed, err)
	}

	ns := c.aead.NonceSize()
	if len(raw) < ns+chacha20poly1305.Overhead {
		return "", fmt.Errorf("%w: ciphertext too short", domain.ErrDecryptionFailed)
	}

	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecryptionFailed, err)
	}
	return string(plain), nil
}
