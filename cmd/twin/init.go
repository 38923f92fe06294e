package main

import (
	"github.com/sandevgo/profiletwin/internal/config"
	"github.com/sandevgo/profiletwin/internal/service/installer"
	"github.com/sandevgo/profiletwin/pkg/log"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:           "init",
	Short:         "Create the runtime directory with a .env and an editable SYSTEM.md",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)

		runtimePath := config.GetRuntimePath()
		if _, err := installer.RunWizard(runtimePath); err != nil {
			return err
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("Setup complete! Run 'twin resync' to index your content, then 'twin serve'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
