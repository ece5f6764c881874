package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-worlds/internal/application/handlers"
)

func newActivityCmd() *cobra.Command {
	var (
		q      handlers.ActivityQuery
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent changes, newest first",
		Long: `Shows the activity log. Use --world to narrow it to one world; history of
deleted worlds stays addressable by world id.

Examples:
  lore activity
  lore -w Eldoria activity --kind element-created --since 24h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q.World = globalWorld

			return withDeps(cmd.Context(), func(d *Deps) error {
				items, err := d.Activity.HandleList(q, time.Now())
				if err != nil {
					return fmt.Errorf("listing activity: %w", err)
				}
				if asJSON {
					return writeJSON(os.Stdout, items)
				}
				if len(items) == 0 {
					fmt.Println("No activity.")
					return nil
				}
				return writeActivity(os.Stdout, items)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&q.Kinds, "kind", "k", nil, "Filter by kind, e.g. element-created (repeatable)")
	cmd.Flags().DurationVar(&q.Since, "since", 0, "Only show items newer than this, e.g. 2h")
	cmd.Flags().IntVarP(&q.Limit, "limit", "l", DefaultActivityLimit, "Maximum number of items (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}
