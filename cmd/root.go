package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"textops/config"
	"textops/logging"
)

var configPath string

// cfg is loaded once per invocation, before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "textops",
	Short: "A tool for transforming text documents",
	Long: `Textops applies named text transformations (encodings, formatters, converters, case,
line and hash operations) to documents from files, stdin, inline text or Kubernetes
ConfigMaps and Secrets, as configured in .textops.yaml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		logging.Configure(logging.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON, Output: cmd.ErrOrStderr()})
		logging.L().Debug("configuration loaded", "path", configPath, "strict", cfg.Strict)
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the configuration file")
}
