package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimealert/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05 MST"

type AlerterConfig struct {
	NotifyOnRecovery bool
	Location         *time.Location
}

// Alerter turns transitions into webhook messages. Delivery is best-effort:
// failures are logged and never reach the caller, and nothing is retried.
type Alerter struct {
	sender Sender
	log    *zap.Logger
	cfg    AlerterConfig
}

func NewAlerter(sender Sender, log *zap.Logger, cfg AlerterConfig) *Alerter {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Alerter{sender: sender, log: log, cfg: cfg}
}

func (a *Alerter) NotifyDown(ctx context.Context, t domain.Target, rec domain.StatusRecord) {
	a.deliver(ctx, t, "down", "🔴 Service DOWN", a.downText(t, rec))
}

// NotifyUp is a no-op when recovery notifications are disabled.
func (a *Alerter) NotifyUp(ctx context.Context, t domain.Target, rec domain.StatusRecord) {
	if !a.cfg.NotifyOnRecovery {
		a.log.Debug("notify_recovery_suppressed", zap.String("url", t.String()))
		return
	}
	a.deliver(ctx, t, "up", "🟢 Service RECOVERED", a.upText(t, rec))
}

func (a *Alerter) deliver(ctx context.Context, t domain.Target, kind, title, text string) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("notify_panic",
				zap.String("url", t.String()),
				zap.String("kind", kind),
				zap.Any("panic", r),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, DeliveryTimeout)
	defer cancel()

	if err := a.sender.Send(ctx, title, text); err != nil {
		a.log.Warn("notify_failed",
			zap.String("url", t.String()),
			zap.String("kind", kind),
			zap.Error(err),
		)
		return
	}
	a.log.Info("notify_sent", zap.String("url", t.String()), zap.String("kind", kind))
}

func (a *Alerter) downText(t domain.Target, rec domain.StatusRecord) string {
	reason := rec.Error
	if reason == "" {
		reason = "n/a"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", t)
	b.WriteString("Status: DOWN\n")
	fmt.Fprintf(&b, "Reason: %s\n", reason)
	fmt.Fprintf(&b, "Consecutive failures: %d\n", rec.ConsecutiveFailures)
	fmt.Fprintf(&b, "Time: %s", a.stamp(rec.LastCheck))
	return b.String()
}

func (a *Alerter) upText(t domain.Target, rec domain.StatusRecord) string {
	httpTxt := "n/a"
	if rec.StatusCode != nil {
		httpTxt = fmt.Sprintf("%d", *rec.StatusCode)
	}
	latencyTxt := "n/a"
	if rec.ResponseTime != nil {
		latencyTxt = fmt.Sprintf("%d ms", rec.ResponseTime.Milliseconds())
	}
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", t)
	b.WriteString("Status: UP\n")
	fmt.Fprintf(&b, "HTTP: %s\n", httpTxt)
	fmt.Fprintf(&b, "Response time: %s\n", latencyTxt)
	fmt.Fprintf(&b, "Time: %s", a.stamp(rec.LastCheck))
	return b.String()
}

func (a *Alerter) stamp(at time.Time) string {
	if at.IsZero() {
		at = time.Now()
	}
	return at.In(a.cfg.Location).Format(timestampLayout)
}
