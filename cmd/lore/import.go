package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-worlds/internal/application/handlers"
	"github.com/ersonp/lore-worlds/internal/domain/entities"
)

func newImportCmd() *cobra.Command {
	var opts handlers.ImportOptions

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import worlds from a canonical JSON export",
		Long: `Imports every world of a canonical export. A world whose id already exists
is a conflict: the import fails and lists the conflicts unless --on-conflict
or a per-world --resolve says to skip it or import it under a new id.

Examples:
  lore import backup.json --dry-run
  lore import backup.json --on-conflict skip
  lore import backup.json --resolve 4f1c...=rename`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Validate without saving")
	cmd.Flags().StringVar(&opts.OnConflict, "on-conflict", "fail", "Conflict handling (fail, skip, rename)")
	cmd.Flags().StringToStringVar(&opts.Resolutions, "resolve", nil, "Per-world conflict handling, WORLD_ID=STRATEGY")

	return cmd
}

func runImport(cmd *cobra.Command, filePath string, opts handlers.ImportOptions) error {
	return withDeps(cmd.Context(), func(d *Deps) error {
		fmt.Printf("Importing %s...\n", filePath)

		result, err := d.Transfer.HandleImport(cmd.Context(), filePath, opts)
		if err != nil {
			var conflict *entities.ConflictError
			if errors.As(err, &conflict) {
				fmt.Printf("\nConflicts (%d):\n", len(conflict.Conflicts))
				for _, c := range conflict.Conflicts {
					fmt.Printf("  %s  %q (existing %q)\n", c.WorldID, c.IncomingTitle, c.ExistingTitle)
				}
				fmt.Println("\nRe-run with --on-conflict skip|rename or --resolve WORLD_ID=skip|rename.")
			}
			return fmt.Errorf("importing file: %w", err)
		}

		// Display summary
		fmt.Println()
		if opts.DryRun {
			fmt.Printf("Dry run: %d worlds would be imported", result.Imported)
		} else {
			fmt.Printf("Imported: %d worlds", result.Imported)
		}
		fmt.Printf(" (%d elements, %d relationships)", result.Elements, result.Relationships)

		if result.Skipped > 0 {
			fmt.Printf(", %d skipped (already exist)", result.Skipped)
		}
		fmt.Println()

		for _, r := range result.Renamed {
			fmt.Printf("  renamed %s -> %s %q\n", r.OriginalID, r.NewID, r.Title)
		}

		return nil
	})
}
