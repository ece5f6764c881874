package ports

// SecretStore encrypts and decrypts sensitive values such as provider API keys.
type SecretStore interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// FileSource reads and writes whole files on behalf of import and export.
type FileSource interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}
