package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-worlds/internal/application/handlers"
)

func newElementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "elements",
		Aliases: []string{"el"},
		Short:   "Manage the elements of a world",
		Long: `Characters, locations, events and the other building blocks of a world.
Write @Title in element content to mention another element of the same world.

Examples:
  lore -w Eldoria elements add Castle --type location
  lore -w Eldoria elements add Hero --type character --content "Lives in @Castle"
  lore -w Eldoria elements show Castle`,
	}

	cmd.AddCommand(
		newElementsListCmd(),
		newElementsAddCmd(),
		newElementsUpdateCmd(),
		newElementsDeleteCmd(),
		newElementsShowCmd(),
	)

	return cmd
}

func newElementsListCmd() *cobra.Command {
	var (
		filter handlers.ElementFilter
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the elements of a world",
		RunE: func(cmd *cobra.Command, args []string) error {
			world, err := requireWorld()
			if err != nil {
				return err
			}

			return withDeps(cmd.Context(), func(d *Deps) error {
				elements, err := d.Elements.HandleList(world, filter)
				if err != nil {
					return fmt.Errorf("listing elements: %w", err)
				}

				if asJSON {
					return writeJSON(os.Stdout, elements)
				}
				if len(elements) == 0 {
					fmt.Println("No elements found.")
					return nil
				}
				return writeElements(os.Stdout, elements)
			})
		},
	}

	cmd.Flags().StringVarP(&filter.Type, "type", "t", "", "Filter by element type")
	cmd.Flags().StringVar(&filter.Tag, "tag", "", "Filter by tag")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}

func newElementsAddCmd() *cobra.Command {
	var in handlers.ElementInput

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add an element to a world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			world, err := requireWorld()
			if err != nil {
				return err
			}
			in.Title = args[0]

			return withDeps(cmd.Context(), func(d *Deps) error {
				id, err := d.Elements.HandleAdd(cmd.Context(), world, in)
				if err != nil {
					return fmt.Errorf("adding element: %w", err)
				}
				fmt.Printf("Added %s %q (%s)\n", in.Type, in.Title, id)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&in.Type, "type", "t", "custom", "Element type (see 'lore types')")
	cmd.Flags().StringVarP(&in.Content, "content", "c", "", "Element content; @Title mentions other elements")
	cmd.Flags().StringSliceVar(&in.Tags, "tag", nil, "Tag (repeatable)")

	return cmd
}

func newElementsUpdateCmd() *cobra.Command {
	var (
		elementType string
		title       string
		content     string
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "update ELEMENT",
		Short: "Change an element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			world, err := requireWorld()
			if err != nil {
				return err
			}

			var changes handlers.ElementChanges
			if cmd.Flags().Changed("type") {
				changes.Type = &elementType
			}
			if cmd.Flags().Changed("title") {
				changes.Title = &title
			}
			if cmd.Flags().Changed("content") {
				changes.Content = &content
			}
			if cmd.Flags().Changed("tag") {
				changes.Tags = &tags
			}

			return withDeps(cmd.Context(), func(d *Deps) error {
				id, err := d.Elements.HandleUpdate(cmd.Context(), world, args[0], changes)
				if err != nil {
					return fmt.Errorf("updating element: %w", err)
				}
				fmt.Printf("Updated element %s\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&elementType, "type", "t", "", "New element type")
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "New content")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Replace tags (repeatable)")

	return cmd
}

func newElementsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ELEMENT",
		Short: "Delete an element and its relationships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			world, err := requireWorld()
			if err != nil {
				return err
			}

			return withDeps(cmd.Context(), func(d *Deps) error {
				title, err := d.Elements.HandleDelete(cmd.Context(), world, args[0])
				if err != nil {
					return fmt.Errorf("deleting element: %w", err)
				}
				if title == "" {
					fmt.Printf("Element %q does not exist; nothing to delete\n", args[0])
					return nil
				}
				fmt.Printf("Deleted element %q\n", title)
				return nil
			})
		},
	}
}

func newElementsShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show ELEMENT",
		Short: "Show an element with its relationships and backlinks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			world, err := requireWorld()
			if err != nil {
				return err
			}

			return withDeps(cmd.Context(), func(d *Deps) error {
				detail, err := d.Elements.HandleShow(world, args[0])
				if err != nil {
					return fmt.Errorf("showing element: %w", err)
				}
				if asJSON {
					return writeJSON(os.Stdout, detail)
				}
				return writeElementDetail(os.Stdout, detail)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}
