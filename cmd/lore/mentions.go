package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newMentionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mentions <element>",
		Short: "List the elements that mention an element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			world, err := requireWorld()
			if err != nil {
				return err
			}

			return withDeps(cmd.Context(), func(d *Deps) error {
				detail, err := d.Elements.HandleShow(world, args[0])
				if err != nil {
					return fmt.Errorf("listing mentions: %w", err)
				}
				if len(detail.Backlinks) == 0 {
					fmt.Printf("No mentions of %s.\n", detail.Element.Title)
					return nil
				}
				return writeBacklinks(os.Stdout, detail.Backlinks)
			})
		},
	}

	cmd.AddCommand(newMentionsReindexCmd())

	return cmd
}

func newMentionsReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex [element]",
		Short: "Rescan element content for @mentions",
		Long:  "Rescans one element, or every element of the world, and rebuilds its mentions.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			world, err := requireWorld()
			if err != nil {
				return err
			}
			elementRef := ""
			if len(args) > 0 {
				elementRef = args[0]
			}

			return withDeps(cmd.Context(), func(d *Deps) error {
				scanned, mentions, err := d.Elements.HandleReindex(cmd.Context(), world, elementRef)
				if err != nil {
					return fmt.Errorf("reindexing mentions: %w", err)
				}
				fmt.Printf("Scanned %d element(s), found %d mention(s)\n", scanned, mentions)
				return nil
			})
		},
	}
}
