package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	embedder "github.com/ersonp/lore-worlds/internal/infrastructure/embedder/openai"
)

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find elements by meaning",
		Long: `Semantic search over the elements of a world. Needs an embedder API key and
a reachable qdrant; run 'lore search reindex' once to index existing elements.

Examples:
  lore -w Eldoria search "fortified places in the north"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			world, err := requireWorld()
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")

			return withDeps(cmd.Context(), func(d *Deps) error {
				hits, err := d.Assist.HandleSearch(cmd.Context(), world, query, limit)
				if err != nil {
					return fmt.Errorf("searching: %w", err)
				}
				if len(hits) == 0 {
					fmt.Println("No matches.")
					return nil
				}
				return writeSearchHits(os.Stdout, hits)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultSearchLimit, "Maximum number of results")

	cmd.AddCommand(newSearchReindexCmd())

	return cmd
}

func newSearchReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index of a world",
		RunE: func(cmd *cobra.Command, args []string) error {
			world, err := requireWorld()
			if err != nil {
				return err
			}

			return withInternalDeps(cmd.Context(), func(d *internalDeps) error {
				if d.vectors != nil {
					if err := d.vectors.EnsureIndex(cmd.Context(), embedder.VectorSize); err != nil {
						return fmt.Errorf("creating collection: %w", err)
					}
				}

				n, err := d.Assist.HandleReindexSearch(cmd.Context(), world)
				if err != nil {
					return fmt.Errorf("reindexing: %w", err)
				}
				fmt.Printf("Indexed %d element(s)\n", n)
				return nil
			})
		},
	}
}
