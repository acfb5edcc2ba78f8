package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unifecaf/triagebot/internal/runtime"
	"github.com/unifecaf/triagebot/internal/validator"
	"github.com/unifecaf/triagebot/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the conversation graph for consistency",
	Long:  `Crawls the conversation from ASK_ROLE and reports broken links, dead ends and unreachable steps.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validator.ValidateGraph(runtime.Transitions(), domain.StepAskRole); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Graph is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
