package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-worlds/internal/application/handlers"
	llm "github.com/ersonp/lore-worlds/internal/infrastructure/llm/openai"
)

func newAssistCmd() *cobra.Command {
	var in handlers.AskInput

	cmd := &cobra.Command{
		Use:   "assist <prompt>",
		Short: "Ask the AI assistant about a world or element",
		Long: `Sends the prompt to the AI assistant together with a summary of the world,
or of one element and its neighborhood when --element is set.

Examples:
  lore -w Eldoria assist "Suggest three rivals for the Hero"
  lore -w Eldoria assist --element Castle "Describe its history"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			world, err := requireWorld()
			if err != nil {
				return err
			}
			in.World = world
			in.Prompt = strings.Join(args, " ")

			return withInternalDeps(cmd.Context(), func(d *internalDeps) error {
				if len(d.assistant.Providers()) == 0 {
					return errors.New("no AI provider configured (set llm.api_key or OPENAI_API_KEY)")
				}

				resp, err := d.Assist.HandleAsk(cmd.Context(), in)
				if err != nil {
					return fmt.Errorf("asking assistant: %w", err)
				}
				fmt.Println(resp.Text)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&in.Provider, "provider", "p", llm.ProviderName, "AI provider")
	cmd.Flags().StringVarP(&in.Element, "element", "e", "", "Focus on one element")

	return cmd
}
