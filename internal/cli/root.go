package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimealert/internal/config"
	"github.com/hamed0406/uptimealert/internal/lifecycle"
	"github.com/hamed0406/uptimealert/internal/logging"
	"github.com/hamed0406/uptimealert/internal/ui"
)

type rootFlags struct {
	envFile string
}

func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	run := runCmd()

	cmd := &cobra.Command{
		Use:   "uptimealert",
		Short: "Probe HTTP endpoints on a schedule and alert on state changes",
		Long: `uptimealert checks a list of URLs on a cron schedule.

It sends a webhook alert when a target goes down, and another when it
recovers. Configuration comes from the environment, optionally seeded
from .env.local and .env files.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnvFiles(flags.envFile)
		},
		// no subcommand means run
		RunE:          run.RunE,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "Load environment from this file instead of .env.local/.env")

	cmd.AddCommand(
		run,
		checkCmd(),
		preflightCmd(),
	)
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	err := NewRootCmd().Execute()
	if err != nil {
		ui.Error("%v", err)
	}
	return lifecycle.ExitCode(err)
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	logger, err := logging.NewLogger(cfg.LogDir, cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}
