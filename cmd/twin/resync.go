package main

import (
	"encoding/json"
	"os"
	"os/signal"

	"github.com/sandevgo/profiletwin/pkg/log"
	"github.com/spf13/cobra"
)

var resyncCmd = &cobra.Command{
	Use:          "resync",
	Short:        "Reconcile the vector index with the content store once",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		app, err := NewApp(ctx)
		if err != nil {
			return err
		}
		defer closeAll(ctx, app)

		report, err := app.Worker.Resync(ctx)
		if err != nil {
			return err
		}

		log.FromCtx(ctx).Info().Int("failed", report.Failed).Msg("resync finished")

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	rootCmd.AddCommand(resyncCmd)
}
