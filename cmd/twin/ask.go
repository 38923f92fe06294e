package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/sandevgo/profiletwin/internal/service/chat"
	"github.com/sandevgo/profiletwin/internal/transport/cli"
	"github.com/spf13/cobra"
)

var verbose bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the twin a question, or start an interactive session",
	Long:  `With a question argument the answer is printed once. Without arguments an interactive prompt is started.`,
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

		if len(args) > 0 {
			resp, err := app.Pipeline.Chat(ctx, chat.Request{Message: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Response)
			if verbose {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatMetadata(resp.Metadata))
			}
			return nil
		}

		rl, err := cli.NewReadLine(app.Pipeline, app.Commands, app.AppCfg, verbose)
		if err != nil {
			return err
		}
		defer rl.Shutdown(ctx)

		return rl.Start(ctx)
	},
}

func closeAll(ctx context.Context, app *App) {
	for _, c := range app.Cleanups {
		_ = c.Shutdown(context.WithoutCancel(ctx))
	}
}

func init() {
	askCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print retrieval metadata after each answer")
	rootCmd.AddCommand(askCmd)
}
