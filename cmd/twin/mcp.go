package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/profiletwin/internal/transport/mcp"
	"github.com/sandevgo/profiletwin/pkg/log"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the twin as an MCP tool server over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// stdout carries the protocol
		var flushLog func()
		ctx, flushLog = setupLogger(ctx, log.WithOutput(os.Stderr))
		defer flushLog()

		app, err := NewApp(ctx)
		if err != nil {
			return err
		}
		defer closeAll(ctx, app)

		return mcp.NewServer(app.Pipeline).Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
