package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users with a stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := build(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		users, err := a.assistant.Sessions(cmd.Context())
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Fprintln(cmd.OutOrStdout(), u)
		}
		return nil
	},
}

var sessionsSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove expired sessions without exporting them",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := build(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.assistant.Manager().Sweep(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d expired session(s) removed\n", n)
		return nil
	},
}

var sessionsResetCmd = &cobra.Command{
	Use:   "reset <user>",
	Short: "Discard a user's session and print the new greeting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := build(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		reply, err := a.assistant.Restart(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, m := range reply.Messages {
			fmt.Fprintln(cmd.OutOrStdout(), m.Text)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd, sessionsSweepCmd, sessionsResetCmd)
}
