package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-worlds/internal/domain/mocks"
	"github.com/ersonp/lore-worlds/internal/infrastructure/config"
)

func TestSecretsHandler_Encrypt(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.LLM.APIKey = "sk-llm"
	cfg.Embedder.APIKey = "sk-emb"
	require.NoError(t, config.Write(dir, cfg))

	t.Setenv("QDRANT_API_KEY", "from-env")

	h := NewSecretsHandler(&mocks.SecretStore{})
	n, err := h.HandleEncrypt(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	saved, err := config.ReadFile(dir)
	require.NoError(t, err)
	assert.True(t, saved.Secrets.Encrypt)
	assert.Equal(t, "enc:mock:sk-llm", saved.LLM.APIKey)
	assert.Equal(t, "enc:mock:sk-emb", saved.Embedder.APIKey)
	assert.Empty(t, saved.Qdrant.APIKey, "environment keys are not persisted")

	n, err = h.HandleEncrypt(dir)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSecretsHandler_NoConfig(t *testing.T) {
	h := NewSecretsHandler(&mocks.SecretStore{})
	_, err := h.HandleEncrypt(t.TempDir())
	assert.ErrorContains(t, err, "config file not found")
}
