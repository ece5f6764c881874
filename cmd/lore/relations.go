package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRelationsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "relations [element]",
		Short: "List relationships of a world or an element",
		Long: `Shows the relationships of a world, or those touching one element. Viewed
from the target side a relationship reads as its inverse, so "Hero Located In
Castle" shows as "Contains Hero" under Castle.

Examples:
  lore -w Eldoria relations
  lore -w Eldoria relations Castle
  lore -w Eldoria relations Hero --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelations(cmd, args, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "tree", "Output format: tree, list, json")

	return cmd
}

func runRelations(cmd *cobra.Command, args []string, format string) error {
	switch format {
	case "tree", "list", "json":
	default:
		return fmt.Errorf("invalid format: %s (valid: tree, list, json)", format)
	}

	world, err := requireWorld()
	if err != nil {
		return err
	}
	elementRef := ""
	if len(args) > 0 {
		elementRef = args[0]
	}

	return withDeps(cmd.Context(), func(d *Deps) error {
		listing, err := d.Relationships.HandleList(world, elementRef)
		if err != nil {
			return fmt.Errorf("listing relationships: %w", err)
		}

		if format == "json" {
			return writeJSON(os.Stdout, listing)
		}
		if len(listing.Views) == 0 {
			fmt.Println("No relationships found.")
			return nil
		}
		if format == "list" {
			return writeRelationsList(os.Stdout, listing)
		}
		return writeRelationsTree(os.Stdout, listing)
	})
}
