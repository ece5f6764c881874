package mocks

import (
	"errors"
	"strings"
)

// SecretStore is a reversible mock implementation of ports.SecretStore.
// It prefixes instead of encrypting.
type SecretStore struct {
	Err error
}

// Encrypt returns "enc:mock:" + plaintext.
func (m *SecretStore) Encrypt(plaintext string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return "enc:mock:" + plaintext, nil
}

// Decrypt reverses Encrypt.
func (m *SecretStore) Decrypt(ciphertext string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if !strings.HasPrefix(ciphertext, "enc:mock:") {
		return "", errors.New("not a mock ciphertext")
	}
	return strings.TrimPrefix(ciphertext, "enc:mock:"), nil
}

// FileSource is an in-memory mock implementation of ports.FileSource.
type FileSource struct {
	Files map[string][]byte
	Err   error
}

// ReadFile returns the stored file contents.
func (m *FileSource) ReadFile(path string) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	data, ok := m.Files[path]
	if !ok {
		return nil, errors.New("file not found: " + path)
	}
	return data, nil
}

// WriteFile stores the file contents.
func (m *FileSource) WriteFile(path string, data []byte) error {
	if m.Err != nil {
		return m.Err
	}
	if m.Files == nil {
		m.Files = make(map[string][]byte)
	}
	m.Files[path] = append([]byte(nil), data...)
	return nil
}
