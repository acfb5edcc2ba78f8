package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unifecaf/triagebot/internal/presentation/graph"
	"github.com/unifecaf/triagebot/internal/runtime"
	"github.com/unifecaf/triagebot/pkg/domain"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the conversation graph as a Mermaid flowchart",
	Long: `Prints every step and labelled transition of the conversation.

With --user the step of that user's stored session is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")

		var overlay *graph.Overlay
		if userID != "" {
			a, err := build(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.assistant.Manager().Store().Load(cmd.Context(), userID)
			switch {
			case errors.Is(err, domain.ErrSessionNotFound):
				logger.Warn("No stored session", "user_id", userID)
			case err != nil:
				return err
			default:
				overlay = &graph.Overlay{Current: sess.Step}
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(runtime.Transitions(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("user", "", "Highlight the current step of this user's session")
}
