package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/unifecaf/triagebot/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the assistant as MCP tools (send_message, query_courses) and the
course listing as the triagebot://courses resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := build(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := mcp.NewServer(a.assistant, mcp.WithLogger(logger))
		switch transport {
		case "stdio":
			// Stdout carries the protocol; logs go to Stderr.
			return srv.ServeStdio()
		case "sse":
			return srv.ServeSSE(ctx, addr)
		default:
			return fmt.Errorf("unknown transport %q", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("transport", "t", "stdio", "Transport to use (stdio, sse)")
	mcpCmd.Flags().String("addr", "localhost:8081", "Address for the sse transport")
}
