package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sandevgo/profiletwin/pkg/log"
	"github.com/sandevgo/profiletwin/pkg/srv"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, Telegram bot and background workers",
	Long:  `Initializes and starts all configured transports (HTTP, Telegram) together with the session janitor and the periodic content resync.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting profile twin")

		app, err := NewApp(ctx)
		if err != nil {
			return err
		}
		services, err := app.Services(ctx)
		if err != nil {
			return err
		}

		srv.StartServices(ctx, services)

		// Wait for shutdown signal
		srv.ShutdownServices(ctx, services, shutdownTimeout)
		logger.Info().Msg("profile twin has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
