package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newWorldsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "worlds",
		Short: "Manage worlds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorldsList(cmd, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	cmd.AddCommand(
		newWorldsListCmd(),
		newWorldsCreateCmd(),
		newWorldsUpdateCmd(),
		newWorldsDeleteCmd(),
	)

	return cmd
}

func newWorldsListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all worlds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorldsList(cmd, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}

func runWorldsList(cmd *cobra.Command, asJSON bool) error {
	return withDeps(cmd.Context(), func(d *Deps) error {
		worlds := d.Worlds.HandleList()

		if asJSON {
			return writeJSON(os.Stdout, worlds)
		}

		if len(worlds) == 0 {
			fmt.Println("No worlds yet.")
			fmt.Println("Use 'lore worlds create TITLE' to create a world.")
			return nil
		}

		return writeWorlds(os.Stdout, worlds)
	})
}

func newWorldsCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create TITLE",
		Short: "Create a new world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				id, err := d.Worlds.HandleCreate(cmd.Context(), args[0], description)
				if err != nil {
					return fmt.Errorf("creating world: %w", err)
				}
				fmt.Printf("Created world %q (%s)\n", args[0], id)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "World description")

	return cmd
}

func newWorldsUpdateCmd() *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "update WORLD",
		Short: "Rename a world or change its description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var titlePtr, descPtr *string
			if cmd.Flags().Changed("title") {
				titlePtr = &title
			}
			if cmd.Flags().Changed("description") {
				descPtr = &description
			}
			if titlePtr == nil && descPtr == nil {
				return fmt.Errorf("nothing to update (use --title or --description)")
			}

			return withDeps(cmd.Context(), func(d *Deps) error {
				id, err := d.Worlds.HandleUpdate(cmd.Context(), args[0], titlePtr, descPtr)
				if err != nil {
					return fmt.Errorf("updating world: %w", err)
				}
				fmt.Printf("Updated world %s\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")

	return cmd
}

func newWorldsDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete WORLD",
		Short: "Delete a world with all its elements and relationships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				if !force {
					prompt := fmt.Sprintf("Delete world %q?", args[0])
					for _, w := range d.Worlds.HandleList() {
						if w.ID == args[0] || w.Title == args[0] {
							prompt = fmt.Sprintf("Delete world %q with %d elements and %d relationships?",
								w.Title, w.Elements, w.Relationships)
							break
						}
					}
					if !confirmAction(prompt) {
						fmt.Println("Cancelled.")
						return nil
					}
				}

				title, err := d.Worlds.HandleDelete(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("deleting world: %w", err)
				}
				if title == "" {
					fmt.Printf("World %q does not exist; nothing to delete\n", args[0])
					return nil
				}
				fmt.Printf("Deleted world %q\n", title)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}
