package handlers

import (
	"fmt"

	"github.com/ersonp/lore-worlds/internal/domain/ports"
	"github.com/ersonp/lore-worlds/internal/infrastructure/config"
)

// SecretsHandler rewrites API keys in the config file.
type SecretsHandler struct {
	secrets ports.SecretStore
}

// NewSecretsHandler creates a new SecretsHandler.
func NewSecretsHandler(secrets ports.SecretStore) *SecretsHandler {
	return &SecretsHandler{secrets: secrets}
}

// HandleEncrypt encrypts every plaintext API key in the config file at
// basePath and turns on secrets.encrypt. It returns the number of keys
// encrypted. Environment overrides are never written back.
func (h *SecretsHandler) HandleEncrypt(basePath string) (int, error) {
	cfg, err := config.ReadFile(basePath)
	if err != nil {
		return 0, err
	}

	n, err := cfg.EncryptSecrets(h.secrets)
	if err != nil {
		return 0, err
	}
	if n == 0 && cfg.Secrets.Encrypt {
		return 0, nil
	}

	cfg.Secrets.Encrypt = true
	if err := config.Write(basePath, cfg); err != nil {
		return 0, fmt.Errorf("saving config: %w", err)
	}
	return n, nil
}
