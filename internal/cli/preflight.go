package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hamed0406/uptimealert/internal/config"
	"github.com/hamed0406/uptimealert/internal/probe"
	"github.com/hamed0406/uptimealert/internal/ui"
)

func preflightCmd() *cobra.Command {
	var skipDNS bool

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Validate configuration without probing anything",
		Long: `Check the environment for configuration mistakes before deploying.
Every target host is resolved unless --skip-dns is given; resolution
problems are reported as warnings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			if err := cfg.Validate(); err != nil {
				var verr *config.ValidationError
				if errors.As(err, &verr) {
					for _, line := range strings.Split(verr.Err.Error(), "; ") {
						ui.Error("%s", line)
					}
					return errors.New("preflight failed")
				}
				return err
			}
			ui.Success("configuration valid")

			if strings.TrimSpace(os.Getenv("TARGETS")) == "" {
				ui.Warn("TARGETS is empty; monitoring the demo list: %s", strings.Join(config.DemoTargets, ", "))
			} else {
				ui.Success("TARGETS: %d URL(s)", len(cfg.Targets))
			}
			ui.Success("CHECK_SCHEDULE=%s", cfg.Schedule)
			ui.Success("timeout %s, %d attempt(s), backoff %s", cfg.RequestTimeout, cfg.RetryAttempts, cfg.RetryBackoff)

			if !slices.Contains(cfg.SuccessCodes, 200) {
				ui.Warn("SUCCESS_STATUS_CODES does not include 200")
			}
			if !cfg.NotifyOnRecovery {
				ui.Warn("NOTIFY_ON_RECOVERY=false; only down alerts will be sent")
			}
			if cfg.OverlapPolicy == config.OverlapAllow {
				ui.Warn("OVERLAP_POLICY=allow; slow cycles may run concurrently")
			}
			if cfg.StatusAddr != "" {
				ui.Success("STATUS_ADDR=%s", cfg.StatusAddr)
				if len(cfg.StatusAPIKeys) == 0 {
					ui.Warn("STATUS_API_KEYS is empty; /api/status is open to anyone who can reach it")
				}
			}

			if !skipDNS {
				checkTargetDNS(cmdContext(cmd), cfg.Targets)
			}
			ui.Success("preflight passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipDNS, "skip-dns", false, "Do not resolve target hosts")
	return cmd
}

func checkTargetDNS(ctx context.Context, targets []string) {
	d := probe.NewDNSDiagnoser()
	for _, t := range targets {
		st := d.Diagnose(ctx, t)
		if st.Class == probe.DNSResolves {
			ui.Success("%s resolves", st.Domain)
			continue
		}
		msg := fmt.Sprintf("%s: %s", st.Domain, st.Class)
		if st.ResolverError != "" {
			msg += " (" + st.ResolverError + ")"
		}
		ui.Warn("%s", msg)
	}
}
