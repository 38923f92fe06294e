package main

import (
	"fmt"

	cenv "github.com/caarlos0/env/v11"
	"github.com/sandevgo/profiletwin/internal/config"
	"github.com/sandevgo/profiletwin/pkg/env"
	"github.com/spf13/cobra"
)

var showSecrets bool

var configCmd = &cobra.Command{
	Use:          "config",
	Short:        "Print the effective configuration as .env lines",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := &config.AppConfig{}
		configs := []any{
			app,
			&config.LLMConfig{},
			&config.RAGConfig{},
			&config.VectorConfig{},
			&config.ContentConfig{},
		}

		out := cmd.OutOrStdout()
		for _, c := range configs {
			// Missing required values are reported, not fatal.
			if err := cenv.Parse(c); err != nil {
				fmt.Fprintf(out, "# %v\n", err)
			}
		}
		if app.EnableTelegram {
			tg := &config.TelegramConfig{}
			if err := cenv.Parse(tg); err != nil {
				fmt.Fprintf(out, "# %v\n", err)
			}
			configs = append(configs, tg)
		}

		var opts []env.Option
		if !showSecrets {
			opts = append(opts, env.MaskSecrets())
		}
		text, err := env.MarshalEnv(configs, opts...)
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print secret values unmasked")
	rootCmd.AddCommand(configCmd)
}
