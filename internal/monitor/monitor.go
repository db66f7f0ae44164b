package monitor

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/uptimealert/internal/domain"
	"github.com/hamed0406/uptimealert/internal/probe"
	"github.com/hamed0406/uptimealert/internal/repo"
)

// Notifier is told about transitions. Implementations must not panic and
// must swallow their own delivery errors.
type Notifier interface {
	NotifyDown(ctx context.Context, t domain.Target, rec domain.StatusRecord)
	NotifyUp(ctx context.Context, t domain.Target, rec domain.StatusRecord)
}

// Diagnoser explains transport failures; it never affects classification.
type Diagnoser interface {
	Diagnose(ctx context.Context, target string) probe.DNSStatus
}

// Summary is the aggregate outcome of one cycle.
type Summary struct {
	CycleID  string        `json:"cycle_id"`
	Up       int           `json:"up"`
	Down     int           `json:"down"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
}

type Options struct {
	Targets       []domain.Target
	SuccessCodes  []int
	MaxConcurrent int // 0 = all targets at once
	Diagnoser     Diagnoser
}

// Monitor runs check cycles: it probes every target, records the outcome
// and reports transitions.
type Monitor struct {
	log       *zap.Logger
	store     repo.StatusStore
	checker   probe.Checker
	notifier  Notifier
	diagnoser Diagnoser

	targets       []domain.Target
	success       map[int]struct{}
	maxConcurrent int
	now           func() time.Time

	last atomic.Pointer[Summary]
}

func New(log *zap.Logger, store repo.StatusStore, checker probe.Checker, notifier Notifier, opts Options) *Monitor {
	targets := make([]domain.Target, 0, len(opts.Targets))
	seen := make(map[domain.Target]struct{}, len(opts.Targets))
	for _, t := range opts.Targets {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		targets = append(targets, t)
	}
	success := make(map[int]struct{}, len(opts.SuccessCodes))
	for _, c := range opts.SuccessCodes {
		success[c] = struct{}{}
	}
	if notifier == nil {
		notifier = Discard
	}
	return &Monitor{
		log:           log,
		store:         store,
		checker:       checker,
		notifier:      notifier,
		diagnoser:     opts.Diagnoser,
		targets:       targets,
		success:       success,
		maxConcurrent: opts.MaxConcurrent,
		now:           time.Now,
	}
}

// LastSummary returns the summary of the most recently completed cycle.
func (m *Monitor) LastSummary() (Summary, bool) {
	s := m.last.Load()
	if s == nil {
		return Summary{}, false
	}
	return *s, true
}

// RunCycle probes all targets concurrently and returns once every one of
// them has been classified. A failing target never affects the others.
// A panic outside the probe itself (store, diagnosis, notification) is an
// internal fault: the other targets still finish and the fault is returned.
func (m *Monitor) RunCycle(ctx context.Context) (Summary, error) {
	started := m.now()
	id := ulid.MustNew(ulid.Timestamp(started), rand.Reader).String()
	log := m.log.With(zap.String("cycle_id", id))
	log.Debug("cycle_start", zap.Int("targets", len(m.targets)))

	var up, down atomic.Int64
	var g errgroup.Group
	if m.maxConcurrent > 0 {
		g.SetLimit(m.maxConcurrent)
	}
	for _, t := range m.targets {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("target_panic", zap.String("url", t.String()), zap.Any("panic", r), zap.Stack("stack"))
					err = fmt.Errorf("target %s: panic: %v", t, r)
				}
			}()
			if m.checkTarget(ctx, log, t) {
				up.Add(1)
			} else {
				down.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()

	s := Summary{
		CycleID:  id,
		Up:       int(up.Load()),
		Down:     int(down.Load()),
		Started:  started,
		Duration: m.now().Sub(started),
	}
	m.last.Store(&s)
	log.Info("cycle_complete",
		zap.Int("up", s.Up),
		zap.Int("down", s.Down),
		zap.Int("targets", len(m.targets)),
		zap.Duration("duration", s.Duration),
	)
	return s, err
}

func (m *Monitor) checkTarget(ctx context.Context, log *zap.Logger, t domain.Target) bool {
	res := m.probe(ctx, log, t)
	at := m.now()

	isUp := res.Success && m.isSuccess(res.StatusCode)
	reason := res.Message
	if res.Success && !isUp {
		reason = fmt.Sprintf("unexpected status: %s", res.Message)
	}

	prev, cur, err := m.store.Update(ctx, t, func(prev domain.StatusRecord) domain.StatusRecord {
		if isUp {
			return domain.NextUp(at, res.StatusCode, res.Elapsed)
		}
		return domain.NextDown(prev, at, reason)
	})
	if err != nil {
		log.Error("status_update_failed", zap.String("url", t.String()), zap.Error(err))
		return isUp
	}

	log.Debug("target_checked",
		zap.String("url", t.String()),
		zap.Bool("up", cur.IsUp),
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", res.Elapsed),
		zap.Int("attempts", res.Attempts),
		zap.Int("consecutive_failures", cur.ConsecutiveFailures),
		zap.String("reason", cur.Error),
	)

	switch domain.Classify(prev, cur) {
	case domain.WentDown:
		log.Warn("target_down",
			zap.String("url", t.String()),
			zap.String("reason", cur.Error),
		)
		if !res.Success {
			m.diagnose(ctx, log, t)
		}
		m.notifier.NotifyDown(ctx, t, cur)
	case domain.WentUp:
		log.Info("target_up",
			zap.String("url", t.String()),
			zap.Int("status", res.StatusCode),
			zap.Duration("elapsed", res.Elapsed),
		)
		m.notifier.NotifyUp(ctx, t, cur)
	}
	return cur.IsUp
}

// probe turns a panicking checker into an ordinary failure for this target.
func (m *Monitor) probe(ctx context.Context, log *zap.Logger, t domain.Target) (res probe.CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("probe_panic", zap.String("url", t.String()), zap.Any("panic", r))
			res = probe.CheckResult{Message: fmt.Sprintf("internal fault: %v", r)}
		}
	}()
	return m.checker.Check(ctx, t.String())
}

func (m *Monitor) diagnose(ctx context.Context, log *zap.Logger, t domain.Target) {
	if m.diagnoser == nil {
		return
	}
	dns := m.diagnoser.Diagnose(ctx, t.String())
	log.Info("dns_check",
		zap.String("url", t.String()),
		zap.String("domain", dns.Domain),
		zap.String("class", dns.Class),
		zap.Bool("has_a_or_aaaa", dns.HasAOrAAAA),
		zap.Strings("nameservers", dns.Nameservers),
		zap.String("cname", dns.CNAME),
		zap.String("resolver_error", dns.ResolverError),
	)
}

func (m *Monitor) isSuccess(code int) bool {
	_, ok := m.success[code]
	return ok
}

type discard struct{}

func (discard) NotifyDown(context.Context, domain.Target, domain.StatusRecord) {}
func (discard) NotifyUp(context.Context, domain.Target, domain.StatusRecord)   {}

// Discard drops every notification.
var Discard Notifier = discard{}
