package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# Lore Worlds Configuration

storage:
  backend: sqlite # or badger
  path: lore.db

policy:
  max_worlds: 0 # 0 means no ceiling
  max_elements_per_world: 0
  # allowed_export_formats: [json, markdown]
  # allowed_ai_providers: [openai]

activity:
  capacity: 100

llm:
  provider: openai
  model: gpt-4o-mini
  # api_key: your-api-key (or set OPENAI_API_KEY env var)

embedder:
  provider: openai
  model: text-embedding-3-small
  # api_key: your-api-key (or set OPENAI_API_KEY env var)

qdrant:
  host: localhost
  port: 6334
  collection: lore_elements
  # api_key: your-api-key (for Qdrant Cloud)

secrets:
  encrypt: false
  key_path: secret.key

log:
  level: info
`

// WriteDefault creates the .lore directory and writes a default config file.
func WriteDefault(basePath string) error {
	configDir := ConfigDir(basePath)
	configFile := ConfigFilePath(basePath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(DefaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Write writes the given config to the config file. The file is private
// when it carries API keys.
func Write(basePath string, cfg *Config) error {
	configDir := ConfigDir(basePath)
	configFile := filepath.Join(configDir, DefaultConfigFile)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	perm := os.FileMode(0644)
	for _, field := range cfg.secretFields() {
		if *field != "" {
			perm = 0600
			break
		}
	}

	if err := os.WriteFile(configFile, data, perm); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
