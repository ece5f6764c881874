package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-worlds/internal/application/handlers"
)

func newExportCmd() *cobra.Command {
	var opts handlers.ExportOptions

	cmd := &cobra.Command{
		Use:   "export [world...]",
		Short: "Export worlds to a file",
		Long: `Exports worlds as canonical JSON (importable) or as text, markdown, csv or xml.
Without arguments every world is exported, or the --world world when set.
The format defaults to the --output extension, then to JSON.
With --output-dir the file is named after the exported world.

Examples:
  lore export -o backup.json
  lore export Eldoria -o eldoria.md
  lore -w Eldoria export --format csv
  lore -w Eldoria export --format markdown --output-dir exports`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Worlds = args
			if len(opts.Worlds) == 0 && globalWorld != "" {
				opts.Worlds = []string{globalWorld}
			}

			return withDeps(cmd.Context(), func(d *Deps) error {
				result, err := d.Transfer.HandleExport(cmd.Context(), opts)
				if err != nil {
					return fmt.Errorf("exporting: %w", err)
				}

				if result.Path == "" {
					_, err := os.Stdout.Write(result.Data)
					return err
				}
				fmt.Fprintf(os.Stderr, "Exported %d bytes of %s to %s\n", len(result.Data), result.Format, result.Path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "auto", "Output format (json, text, markdown, csv, xml, auto)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "", "Directory for a file named after the world")

	return cmd
}
