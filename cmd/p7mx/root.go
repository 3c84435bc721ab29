package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"p7mx/internal/config"
	"p7mx/internal/logging"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// appContext carries the loaded configuration to subcommands.
type appContext struct {
	cfg config.Config
}

func newRootCommand() *cobra.Command {
	app := &appContext{}
	var configPath string
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "p7mx",
		Short:         "Batch extractor for PKCS#7 signed container (.p7m) files",
		Long: "p7mx unwraps DER-encoded PKCS#7 signed containers by driving the\n" +
			"external openssl binary, one file at a time or with a bounded worker\n" +
			"pool, and reports per-file status and overall progress.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel)
			app.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(newExtractCommand(app))
	rootCmd.AddCommand(newCheckCommand(app))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// newConfigCommand prints the annotated sample configuration.
func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(config.Sample())
			return nil
		},
	}
}
