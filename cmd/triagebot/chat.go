package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/unifecaf/triagebot"
	"github.com/unifecaf/triagebot/internal/presentation/tui"
	"github.com/unifecaf/triagebot/pkg/runner"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant from the terminal",
	Long: `Starts an interactive conversation on Stdin/Stdout.

With --json every reply is printed as one JSON object per line and input
lines may be JSON strings, {"text": ...} objects or plain text.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := build(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		userID, _ := cmd.Flags().GetString("user")
		jsonMode, _ := cmd.Flags().GetBool("json")

		opts := []runner.Option{
			runner.WithLogger(logger),
			runner.WithUserID(userID),
		}
		if jsonMode {
			opts = append(opts, runner.WithInputHandler(runner.NewJSONHandler(os.Stdin, os.Stdout)))
		} else {
			var handlerOpts []runner.TextHandlerOption
			if tui.IsTerminal(os.Stdout) {
				tui.PrintBanner(os.Stdout, strings.TrimSpace(triagebot.Version))
				if render, err := tui.NewRenderer(); err == nil {
					handlerOpts = append(handlerOpts, runner.WithTextHandlerRenderer(render))
				} else {
					logger.Warn("Markdown rendering disabled", "err", err)
				}
				handlerOpts = append(handlerOpts, runner.WithTextHandlerOptions(tui.RenderOptions))
			}
			opts = append(opts,
				runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout, handlerOpts...)),
				runner.WithWelcome("Digite uma mensagem para começar. /start reinicia, exit encerra."),
			)
		}
		return runner.NewRunner(opts...).Run(ctx, a.assistant)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("user", runner.DefaultUserID, "User identifier for the conversation")
	chatCmd.Flags().Bool("json", false, "Use JSON Lines instead of formatted text")
}
