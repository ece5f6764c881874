// Package main provides the entry point for the lore CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version       = "0.1.0-dev"
	globalWorld   string
	globalVerbose bool
	globalMetrics bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lore",
		Short:         "A worldbuilding knowledge graph of worlds, elements and relationships",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalWorld, "world", "w", "", "World to operate on (id or title)")
	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&globalMetrics, "metrics", false, "Print collected metrics after the command")

	rootCmd.AddCommand(
		newInitCmd(),
		newWorldsCmd(),
		newElementsCmd(),
		newRelateCmd(),
		newRelationsCmd(),
		newMentionsCmd(),
		newActivityCmd(),
		newExportCmd(),
		newImportCmd(),
		newAssistCmd(),
		newSearchCmd(),
		newSecretsCmd(),
		newTypesCmd(),
	)

	return rootCmd
}
