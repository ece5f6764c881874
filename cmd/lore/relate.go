package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-worlds/internal/application/handlers"
)

func newRelateCmd() *cobra.Command {
	var in handlers.RelateInput

	cmd := &cobra.Command{
		Use:   "relate <from> <type> <to>",
		Short: "Create a relationship between two elements",
		Long: `Creates a directed relationship between two elements of the same world.
Use quotes for element titles with spaces. The type accepts an identifier
(located_in, located-in) or its label ("Located In"); see 'lore types'.

Examples:
  lore -w Eldoria relate Hero located_in Castle
  lore -w Eldoria relate "Northern Kingdom" "Ally Of" "Southern Isles" --bidirectional`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelate(cmd, args, in)
		},
	}

	cmd.Flags().BoolVar(&in.Bidirectional, "bidirectional", false, "Display the relationship from both ends")
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "Relationship description")

	cmd.AddCommand(newRelateDeleteCmd())

	return cmd
}

func runRelate(cmd *cobra.Command, args []string, in handlers.RelateInput) error {
	world, err := requireWorld()
	if err != nil {
		return err
	}
	in.From, in.Type, in.To = args[0], args[1], args[2]

	return withDeps(cmd.Context(), func(d *Deps) error {
		id, err := d.Relationships.HandleCreate(cmd.Context(), world, in)
		if err != nil {
			return fmt.Errorf("creating relationship: %w", err)
		}

		fmt.Printf("Created relationship: %s\n", id)
		fmt.Printf("  %s -[%s]-> %s\n", in.From, in.Type, in.To)
		if in.Bidirectional {
			fmt.Println("  (bidirectional)")
		}

		return nil
	})
}

func newRelateDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <relationship-id>",
		Short: "Delete a relationship",
		Long:  "Deletes an existing relationship by its ID.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRelateDelete,
	}
}

func runRelateDelete(cmd *cobra.Command, args []string) error {
	world, err := requireWorld()
	if err != nil {
		return err
	}
	relID := args[0]

	return withDeps(cmd.Context(), func(d *Deps) error {
		if err := d.Relationships.HandleDelete(cmd.Context(), world, relID); err != nil {
			return fmt.Errorf("deleting relationship: %w", err)
		}

		fmt.Printf("Deleted relationship: %s\n", relID)
		return nil
	})
}
