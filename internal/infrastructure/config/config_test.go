package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/domain/mocks"
)

func TestSanitizeWorldName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple lowercase",
			input:    "myworld",
			expected: "myworld",
		},
		{
			name:     "uppercase converted",
			input:    "MyWorld",
			expected: "myworld",
		},
		{
			name:     "spaces to underscores",
			input:    "my world",
			expected: "my_world",
		},
		{
			name:     "hyphens to underscores",
			input:    "my-world",
			expected: "my_world",
		},
		{
			name:     "special characters removed",
			input:    "my@world!",
			expected: "myworld",
		},
		{
			name:     "consecutive underscores collapsed",
			input:    "my--world",
			expected: "my_world",
		},
		{
			name:     "leading trailing underscores trimmed",
			input:    "-my-world-",
			expected: "my_world",
		},
		{
			name:     "empty string returns fallback",
			input:    "",
			expected: "world",
		},
		{
			name:     "only special chars returns fallback",
			input:    "!!!",
			expected: "world",
		},
		{
			name:     "complex mixed input",
			input:    "Iron-Throne (Book 1)",
			expected: "iron_throne_book_1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeWorldName(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "lore.db", cfg.Storage.Path)
	assert.Equal(t, 100, cfg.Activity.Capacity)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.Model)
	assert.Equal(t, "localhost", cfg.Qdrant.Host)
	assert.Equal(t, 6334, cfg.Qdrant.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Zero(t, cfg.Policy.MaxWorlds())
	require.NoError(t, cfg.Validate())
}

func TestConfigDir(t *testing.T) {
	assert.Equal(t, "/home/user/project/.lore", ConfigDir("/home/user/project"))
	assert.Equal(t, "/home/user/project/.lore/config.yaml", ConfigFilePath("/home/user/project"))
}

func TestResolvedPaths(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "/p/.lore/lore.db", cfg.StoragePath("/p"))
	assert.Equal(t, "/p/.lore/secret.key", cfg.SecretKeyPath("/p"))

	cfg.Storage.Path = "/var/lib/lore/data"
	assert.Equal(t, "/var/lib/lore/data", cfg.StoragePath("/p"))
}

func TestWriteDefaultAndLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OPENAI_API_KEY", "")

	assert.False(t, Exists(dir))
	require.NoError(t, WriteDefault(dir))
	assert.True(t, Exists(dir))

	err := WriteDefault(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "lore_elements", cfg.Qdrant.Collection)
	assert.Equal(t, 100, cfg.Activity.Capacity)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))

	t.Setenv("LORE_STORAGE_BACKEND", "badger")
	t.Setenv("LORE_POLICY_MAX_WORLDS", "3")
	t.Setenv("LORE_POLICY_EXPORT_FORMATS", "json,md")
	t.Setenv("LORE_LOG_LEVEL", "debug")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, BackendBadger, cfg.Storage.Backend)
	assert.Equal(t, 3, cfg.Policy.MaxWorlds())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.Equal(t, "sk-env", cfg.Embedder.APIKey)
	assert.True(t, cfg.Policy.AllowsExportFormat(entities.FormatMarkdown))
	assert.False(t, cfg.Policy.AllowsExportFormat(entities.FormatXML))
}

func TestLoadFileKeyWinsOverOpenAIEnv(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.LLM.APIKey = "sk-file"
	require.NoError(t, Write(dir, cfg))

	t.Setenv("OPENAI_API_KEY", "sk-env")

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sk-file", loaded.LLM.APIKey)
	assert.Equal(t, "sk-env", loaded.Embedder.APIKey)

	info, err := os.Stat(ConfigFilePath(dir))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Storage.Backend = "postgres" },
			wantErr: "storage.backend must be one of: sqlite badger",
		},
		{
			name:    "empty storage path",
			mutate:  func(c *Config) { c.Storage.Path = "" },
			wantErr: "storage.path is required",
		},
		{
			name:    "zero activity capacity",
			mutate:  func(c *Config) { c.Activity.Capacity = 0 },
			wantErr: "activity.capacity must be at least 1",
		},
		{
			name:    "negative world ceiling",
			mutate:  func(c *Config) { c.Policy.Worlds = -1 },
			wantErr: "policy.worlds must be at least 0",
		},
		{
			name:    "unknown export format",
			mutate:  func(c *Config) { c.Policy.ExportFormats = []string{"json", "pdf"} },
			wantErr: "must be one of",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: "log.level must be one of",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Qdrant.Port = 70000 },
			wantErr: "qdrant.port must be at most 65535",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(ConfigDir(dir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(ConfigDir(dir), DefaultConfigFile), []byte("storage:\n  backend: mongo\n"), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestSecrets(t *testing.T) {
	store := &mocks.SecretStore{}
	cfg := Default()
	cfg.LLM.APIKey = "sk-llm"
	cfg.Qdrant.APIKey = "enc:mock:qd"

	n, err := cfg.EncryptSecrets(store)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "enc:mock:sk-llm", cfg.LLM.APIKey)
	assert.Equal(t, "", cfg.Embedder.APIKey)
	assert.True(t, IsEncrypted(cfg.Qdrant.APIKey))

	require.NoError(t, cfg.DecryptSecrets(store))
	assert.Equal(t, "sk-llm", cfg.LLM.APIKey)
	assert.Equal(t, "qd", cfg.Qdrant.APIKey)
}

func TestPolicy(t *testing.T) {
	open := &Policy{}
	assert.True(t, open.AllowsExportFormat(entities.FormatXML))
	assert.True(t, open.AllowsAIProvider("openai"))

	p := &Policy{
		Worlds:           2,
		ElementsPerWorld: 50,
		ExportFormats:    []string{"canonical", "csv"},
		AIProviders:      []string{"OpenAI"},
	}
	assert.Equal(t, 2, p.MaxWorlds())
	assert.Equal(t, 50, p.MaxElementsPerWorld())
	assert.True(t, p.AllowsExportFormat(entities.FormatCanonical))
	assert.True(t, p.AllowsExportFormat(entities.FormatCSV))
	assert.False(t, p.AllowsExportFormat(entities.FormatText))
	assert.True(t, p.AllowsAIProvider("openai"))
	assert.False(t, p.AllowsAIProvider("anthropic"))
}
