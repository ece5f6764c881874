// Package secrets encrypts API keys at rest with XChaCha20-Poly1305.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/ersonp/lore-worlds/internal/domain/ports"
)

// Prefix marks an encrypted value.
const Prefix = "enc:"

var encoding = base64.RawURLEncoding

// Store implements ports.SecretStore with a 32-byte key kept on disk.
type Store struct {
	key []byte
}

var _ ports.SecretStore = (*Store)(nil)

// Open loads the key at keyPath, creating it with 0600 permissions when it
// does not exist.
func Open(keyPath string) (*Store, error) {
	data, err := os.ReadFile(keyPath)
	if err == nil {
		return FromKey(strings.TrimSpace(string(data)))
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(keyPath), 0700); err != nil {
		return nil, fmt.Errorf("creating key directory: %w", err)
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	if err := os.WriteFile(keyPath, []byte(encoding.EncodeToString(key)), 0600); err != nil {
		return nil, fmt.Errorf("writing key file: %w", err)
	}

	return &Store{key: key}, nil
}

// FromKey builds a store from an encoded key.
func FromKey(encoded string) (*Store, error) {
	key, err := encoding.DecodeString(encoded)
	if err != nil || len(key) != chacha20poly1305.KeySize {
		return nil, errors.New("invalid key: expected 32 base64url-encoded bytes")
	}
	return &Store{key: key}, nil
}

// Encrypt seals plaintext and returns Prefix + base64url(nonce || ciphertext).
// Empty and already encrypted values are returned unchanged.
func (s *Store) Encrypt(plaintext string) (string, error) {
	if plaintext == "" || strings.HasPrefix(plaintext, Prefix) {
		return plaintext, nil
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return Prefix + encoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Values without Prefix are
// returned unchanged.
func (s *Store) Decrypt(ciphertext string) (string, error) {
	if !strings.HasPrefix(ciphertext, Prefix) {
		return ciphertext, nil
	}

	raw, err := encoding.DecodeString(strings.TrimPrefix(ciphertext, Prefix))
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", errors.New("ciphertext too short")
	}

	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decrypting: %w", err)
	}

	return string(plain), nil
}
