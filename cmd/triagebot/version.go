package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/unifecaf/triagebot"
)

var versionCmd = &cobra.Command{
	Use:              "version",
	Short:            "Print the version number of triagebot",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "triagebot version %s\n", strings.TrimSpace(triagebot.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
