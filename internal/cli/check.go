package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hamed0406/uptimealert/internal/config"
	"github.com/hamed0406/uptimealert/internal/lifecycle"
	"github.com/hamed0406/uptimealert/internal/repo"
	"github.com/hamed0406/uptimealert/internal/ui"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run a single check cycle and print the results",
		Long: `Probe every target once using the configured timeout, retries and
allowed status codes. No alerts are sent. Exits 1 if any target is down.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			sum, snap, err := lifecycle.New(cfg, logger).CheckOnce(cmdContext(cmd))
			if err != nil {
				return err
			}
			for _, ts := range snap {
				printTarget(ts)
			}
			fmt.Fprintln(ui.Out)
			fmt.Fprintf(ui.Out, "%s %d up, %d down in %s\n",
				ui.Bold("cycle "+sum.CycleID), sum.Up, sum.Down, sum.Duration.Round(1e6))
			if sum.Down > 0 {
				return fmt.Errorf("%d of %d targets down", sum.Down, sum.Up+sum.Down)
			}
			return nil
		},
	}
}

func printTarget(ts repo.TargetStatus) {
	s := ts.Status
	var detail []string
	if s.StatusCode != nil {
		detail = append(detail, "HTTP "+strconv.Itoa(*s.StatusCode))
	}
	if s.ResponseTime != nil {
		detail = append(detail, fmt.Sprintf("%d ms", s.ResponseTime.Milliseconds()))
	}
	if s.Error != "" {
		detail = append(detail, s.Error)
	}
	state := ui.Up()
	if !s.IsUp {
		state = ui.Down()
	}
	fmt.Fprintf(ui.Out, "%-6s %s %s\n", state, ts.Target, ui.Muted(strings.Join(detail, " · ")))
}
