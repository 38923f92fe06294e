package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/profiletwin/internal/config"
	"github.com/sandevgo/profiletwin/internal/service/ui"
	"github.com/sandevgo/profiletwin/pkg/log"
	"github.com/spf13/cobra"
)

var (
	debug   bool
	jsonLog bool
)

var rootCmd = &cobra.Command{
	Use:   "twin",
	Short: "ProfileTwin, a digital twin that answers questions about a profile",
	Long:  `ProfileTwin answers visitor questions about a person's work, skills and projects, grounded in their indexed profile content.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env must be loaded before any config struct is parsed
		_ = initEnv(config.GetRuntimePath())
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "log-json", false, "write logs as JSON lines")
}

func setupLogger(ctx context.Context, opts ...log.Option) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	opts = append(opts, log.WithJSON(jsonLog))
	return log.NewContextWithLogger(ctx, isDebug, opts...)
}

func initEnv(runtimePath string) error {
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	// Real environment variables win over the file.
	return godotenv.Load(envFile)
}

func CustomizeHelp(rootCmd *cobra.Command) {
	cobra.AddTemplateFunc("StyleTitle", func(s string) string { return ui.TitleStyle.Render(s) })
	cobra.AddTemplateFunc("StyleUsage", func(s string) string { return ui.UsageStyle.Render(s) })
	cobra.AddTemplateFunc("StyleFlag", func(s string) string { return ui.FlagStyle.Render(s) })
	cobra.AddTemplateFunc("StyleDesc", func(s string) string { return ui.DescStyle.Render(s) })

	template := `
{{StyleTitle "USAGE"}}
  {{StyleUsage .UseLine}}
{{if gt (len .Commands) 0}}{{StyleTitle "AVAILABLE COMMANDS"}}
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding}} {{StyleDesc .Short}}{{end}}
{{end}}{{end}}
{{if .HasAvailableLocalFlags}}{{StyleTitle "FLAGS"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces | StyleFlag}}
{{end}}
`
	rootCmd.SetHelpTemplate(template)
}
