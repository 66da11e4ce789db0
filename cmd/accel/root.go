package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/born-ml/accel/internal/config"
)

const version = "v0.1.0-dev"

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "accel",
		Short: "Portable parallel kernel execution",
		Long: `accel runs data-parallel kernels on interchangeable accelerator
variants: serial, threaded and block-parallel CPU back-ends and a
simulated GPU.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format (text, json)")

	cmd.AddCommand(newVersionCmd(), newDevicesCmd(), newRunCmd(), newBenchCmd())
	return cmd
}

// setup installs the configuration and the default logger. Flags given on
// the command line override the file.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") || cfg.Log.Level == "" {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-format") || cfg.Log.Format == "" {
		cfg.Log.Format = o.logFormat
	}
	if err := config.Set(cfg); err != nil {
		return err
	}
	slog.SetDefault(config.NewLogger(cmd.ErrOrStderr(), cfg.Log))
	slog.Debug("Configuration loaded", "path", o.configPath, "workers", cfg.Workers, "lock_slots", cfg.LockSlots)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "accel %s\n", version)
		},
	}
}
