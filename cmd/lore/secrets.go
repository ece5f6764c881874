package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-worlds/internal/application/handlers"
	"github.com/ersonp/lore-worlds/internal/infrastructure/config"
	"github.com/ersonp/lore-worlds/internal/infrastructure/secrets"
)

func newSecretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage API keys stored in the config file",
	}

	cmd.AddCommand(newSecretsEncryptCmd())

	return cmd
}

func newSecretsEncryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt plaintext API keys in .lore/config.yaml",
		Long: `Encrypts every plaintext API key in the config file with a local key
(created on first use at secrets.key_path) and turns on secrets.encrypt.
Keys supplied through the environment are never written to the file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}

			cfg, err := config.ReadFile(cwd)
			if err != nil {
				return err
			}

			store, err := secrets.Open(cfg.SecretKeyPath(cwd))
			if err != nil {
				return fmt.Errorf("opening secret key: %w", err)
			}

			n, err := handlers.NewSecretsHandler(store).HandleEncrypt(cwd)
			if err != nil {
				return fmt.Errorf("encrypting secrets: %w", err)
			}

			fmt.Printf("Encrypted %d API key(s) in %s\n", n, config.ConfigFilePath(cwd))
			return nil
		},
	}
}
