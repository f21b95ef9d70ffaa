package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/ats-simulator/internal/config"
	"github.com/jonathan/ats-simulator/internal/observability"
)

// app holds what every subcommand needs once the root command has run.
type app struct {
	configPath string
	logFormat  string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "ats_sim",
		Short:         "ATS forensic simulation engine",
		Long:          "ats_sim scores a resume against a job posting the way an applicant tracking system would, layer by layer.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: ./ats.yaml if present)")
	cmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: console or json (overrides config)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (overrides config)")

	cmd.AddCommand(
		newSimulateCmd(a),
		newServeCmd(a),
		newTokenCmd(a),
		newValidateCmd(),
		newVersionCmd(),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger.With(zap.String("command", cmd.Name()))
	return nil
}
