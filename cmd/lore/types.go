package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List element types and relationship types",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeTypes(os.Stdout)
		},
	}
}
