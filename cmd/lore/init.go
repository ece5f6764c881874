package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-worlds/internal/application/handlers"
	"github.com/ersonp/lore-worlds/internal/domain/ports"
	"github.com/ersonp/lore-worlds/internal/infrastructure/config"
	"github.com/ersonp/lore-worlds/internal/infrastructure/vectordb/qdrant"
)

func newInitCmd() *cobra.Command {
	var withSearch bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new lore workspace",
		Long: `Creates a .lore directory with default configuration. With --search it also
creates the qdrant collection used by semantic search.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, withSearch)
		},
	}

	cmd.Flags().BoolVar(&withSearch, "search", false, "Create the qdrant collection for semantic search")

	return cmd
}

func runInit(cmd *cobra.Command, withSearch bool) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	var index ports.IndexManager
	if withSearch {
		repo, err := qdrant.NewRepository(config.Default().Qdrant)
		if err != nil {
			return fmt.Errorf("connecting to qdrant: %w", err)
		}
		defer repo.Close()
		index = repo
	}

	result, err := handlers.NewInitHandler(index).Handle(cmd.Context(), cwd)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s\n", result.ConfigPath)
	fmt.Printf("Storage: %s\n", result.StoragePath)
	if result.CollectionName != "" {
		fmt.Printf("Created Qdrant collection: %s\n", result.CollectionName)
	}
	fmt.Println("Lore initialized successfully!")

	return nil
}
