// Package main is the entry point for the hostbridge server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pandeptwidyaop/hostbridge/internal/config"
	"github.com/pandeptwidyaop/hostbridge/internal/dialog"
	"github.com/pandeptwidyaop/hostbridge/internal/logging"
	"github.com/pandeptwidyaop/hostbridge/internal/services"
	"github.com/pandeptwidyaop/hostbridge/internal/system"
	"github.com/pandeptwidyaop/hostbridge/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := serveCmd()

	rootCmd := &cobra.Command{
		Use:           version.Name,
		Short:         "Guarded host access for a desktop UI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	rootCmd.PersistentFlags().String("config", "config.yaml", "path to config file")

	rootCmd.AddCommand(
		serve,
		invokeCmd(),
		allowlistCmd(),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig reads the --config file and configures logging. A missing file
// falls back to defaults.
func loadConfig(cmd *cobra.Command) *config.Config {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	loadErr := err
	if err != nil {
		cfg = config.Default()
	}

	logging.ConfigureRuntime(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if loadErr != nil {
		log.Warn().Err(loadErr).Str("path", path).Msg("could not load config, using defaults")
	}
	return cfg
}

func newDispatcher(cfg *config.Config, opts ...services.DispatcherOption) *services.Dispatcher {
	sys := system.New(
		system.WithTimeout(cfg.Execution.GetTimeout()),
		system.WithMaxOutput(cfg.Execution.MaxOutputSize),
	)

	var saver dialog.Saver = dialog.Headless{}
	if cfg.Dialog.IsEnabled() {
		saver = dialog.NewNative(cfg.Dialog.Title)
	}

	return services.NewDispatcher(sys, services.NewAppInfo(cfg.App), saver, opts...)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}

func allowlistCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "allowlist",
		Short: "List the executables system_execute_command may run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range system.AllowedCommands() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
