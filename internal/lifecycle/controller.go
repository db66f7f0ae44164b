package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimealert/internal/config"
	"github.com/hamed0406/uptimealert/internal/domain"
	"github.com/hamed0406/uptimealert/internal/httpapi"
	"github.com/hamed0406/uptimealert/internal/monitor"
	"github.com/hamed0406/uptimealert/internal/notify"
	"github.com/hamed0406/uptimealert/internal/probe"
	"github.com/hamed0406/uptimealert/internal/repo"
	"github.com/hamed0406/uptimealert/internal/repo/memory"
	"github.com/hamed0406/uptimealert/internal/scheduler"
)

type State int32

const (
	Initializing State = iota
	Running
	ShuttingDown
	Stopped
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case ShuttingDown:
		return "shutting_down"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

const statusShutdownGrace = 5 * time.Second

// FatalError is an unexpected internal fault that stopped the process.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return "fatal fault: " + e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

// ExitCode maps the result of Run to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

type Option func(*Controller)

// WithChecker replaces the HTTP probe built from the configuration.
func WithChecker(c probe.Checker) Option {
	return func(ctl *Controller) { ctl.checker = c }
}

// WithNotifier replaces the webhook alerter built from the configuration.
func WithNotifier(n monitor.Notifier) Option {
	return func(ctl *Controller) { ctl.notifier = n }
}

// WithDiagnoser replaces the DNS diagnoser.
func WithDiagnoser(d monitor.Diagnoser) Option {
	return func(ctl *Controller) { ctl.diagnoser = d }
}

// Controller owns startup and shutdown: it validates the configuration,
// runs the first cycle, keeps the scheduler going until ctx ends or a fatal
// fault is reported, then stops it.
type Controller struct {
	cfg config.Config
	log *zap.Logger

	checker   probe.Checker
	notifier  monitor.Notifier
	diagnoser monitor.Diagnoser

	state       atomic.Int32
	faults      chan error
	running     chan struct{}
	runningOnce sync.Once

	store   repo.StatusStore
	monitor *monitor.Monitor
}

func New(cfg config.Config, log *zap.Logger, opts ...Option) *Controller {
	c := &Controller{
		cfg:     cfg,
		log:     log,
		faults:  make(chan error, 8),
		running: make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) State() State { return State(c.state.Load()) }

func (c *Controller) StateName() string { return c.State().String() }

// Running is closed once the controller enters the Running state.
func (c *Controller) Running() <-chan struct{} { return c.running }

// Fault reports an unrecoverable error; Run shuts down and returns it.
func (c *Controller) Fault(err error) {
	select {
	case c.faults <- err:
	default:
		c.log.Error("fault_dropped", zap.Error(err))
	}
}

func (c *Controller) setState(s State) {
	old := State(c.state.Swap(int32(s)))
	if old != s {
		c.log.Info("lifecycle_state", zap.Stringer("from", old), zap.Stringer("to", s))
	}
	if s == Running {
		c.runningOnce.Do(func() { close(c.running) })
	}
}

// Run blocks until shutdown. It returns nil after a requested shutdown, a
// *config.ValidationError when the configuration is rejected, and a
// *FatalError after an internal fault.
func (c *Controller) Run(ctx context.Context) error {
	c.setState(Initializing)
	if err := c.init(); err != nil {
		c.log.Error("startup_failed", zap.Error(err))
		c.setState(Stopped)
		return err
	}

	sched, err := scheduler.New(c.log, c.cfg.Schedule, c.cfg.OverlapPolicy, c.runCycle, c.Fault)
	if err != nil {
		c.log.Error("startup_failed", zap.Error(err))
		c.setState(Stopped)
		return err
	}

	// cycles outlive shutdown so in-flight records still get written
	cycleCtx := context.WithoutCancel(ctx)

	if err := sched.RunNow(cycleCtx); err != nil {
		c.setState(ShuttingDown)
		c.setState(Stopped)
		return &FatalError{Err: err}
	}

	var status *httpapi.Server
	if c.cfg.StatusAddr != "" {
		status = httpapi.NewServer(c.log, c.store, c.monitor, c, httpapi.Options{
			APIKeys: c.cfg.StatusAPIKeys,
			RPM:     c.cfg.StatusRPM,
			Burst:   c.cfg.StatusBurst,
		})
		if err := status.Start(c.cfg.StatusAddr); err != nil {
			c.log.Error("startup_failed", zap.Error(err))
			c.setState(Stopped)
			return fmt.Errorf("start status server: %w", err)
		}
	}

	sched.Start(cycleCtx)
	c.setState(Running)

	var runErr error
	select {
	case <-ctx.Done():
		c.log.Info("shutdown_requested")
	case err := <-c.faults:
		runErr = c.drainFaults(err)
		c.log.Error("fatal_fault", zap.Error(runErr))
	}

	c.setState(ShuttingDown)
	if err := c.shutdown(sched, status); err != nil {
		c.log.Warn("shutdown_error", zap.Error(err))
	}
	c.setState(Stopped)

	if runErr != nil {
		return &FatalError{Err: runErr}
	}
	return nil
}

func (c *Controller) init() error {
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	targets := make([]domain.Target, len(c.cfg.Targets))
	for i, t := range c.cfg.Targets {
		targets[i] = domain.Target(t)
	}

	store := memory.New()
	if err := store.Init(context.Background(), targets); err != nil {
		return fmt.Errorf("init status store: %w", err)
	}
	c.store = store

	checker := c.checker
	if checker == nil {
		checker = probe.NewRetryChecker(
			probe.NewHTTPChecker(c.cfg.RequestTimeout, c.cfg.FollowRedirects),
			c.cfg.RetryAttempts,
			c.cfg.RetryBackoff,
		)
	}
	notifier := c.notifier
	if notifier == nil {
		notifier = notify.NewAlerter(notify.NewWebhook(c.cfg.WebhookURL), c.log, notify.AlerterConfig{
			NotifyOnRecovery: c.cfg.NotifyOnRecovery,
			Location:         c.cfg.Location(),
		})
	}
	diagnoser := c.diagnoser
	if diagnoser == nil {
		diagnoser = probe.NewDNSDiagnoser()
	}

	c.monitor = monitor.New(c.log, store, checker, notifier, monitor.Options{
		Targets:       targets,
		SuccessCodes:  c.cfg.SuccessCodes,
		MaxConcurrent: c.cfg.MaxConcurrent,
		Diagnoser:     diagnoser,
	})
	c.log.Info("monitor_configured",
		zap.Int("targets", len(targets)),
		zap.String("schedule", c.cfg.Schedule),
		zap.Duration("request_timeout", c.cfg.RequestTimeout),
		zap.Int("retry_attempts", c.cfg.RetryAttempts),
		zap.Duration("retry_backoff", c.cfg.RetryBackoff),
		zap.Ints("success_codes", c.cfg.SuccessCodes),
		zap.Bool("notify_on_recovery", c.cfg.NotifyOnRecovery),
		zap.String("overlap_policy", c.cfg.OverlapPolicy),
	)
	return nil
}

func (c *Controller) runCycle(ctx context.Context) error {
	_, err := c.monitor.RunCycle(ctx)
	return err
}

// drainFaults folds every fault reported so far into one error.
func (c *Controller) drainFaults(first error) error {
	err := first
	for {
		select {
		case more := <-c.faults:
			err = multierr.Append(err, more)
		default:
			return err
		}
	}
}

// shutdown stops scheduling without waiting for a cycle in flight.
func (c *Controller) shutdown(sched *scheduler.Scheduler, status *httpapi.Server) error {
	done := sched.Stop()
	select {
	case <-done.Done():
	default:
		c.log.Info("shutdown_cycle_in_flight")
	}

	var err error
	if status != nil {
		ctx, cancel := context.WithTimeout(context.Background(), statusShutdownGrace)
		defer cancel()
		if serr := status.Shutdown(ctx); serr != nil && !errors.Is(serr, context.Canceled) {
			err = multierr.Append(err, fmt.Errorf("status server: %w", serr))
		}
	}
	return err
}

// CheckOnce validates the configuration and runs a single cycle without
// scheduling anything. Alerts are discarded unless a notifier was injected.
func (c *Controller) CheckOnce(ctx context.Context) (monitor.Summary, []repo.TargetStatus, error) {
	if c.notifier == nil {
		c.notifier = monitor.Discard
	}
	if err := c.init(); err != nil {
		return monitor.Summary{}, nil, err
	}
	sum, err := c.monitor.RunCycle(ctx)
	if err != nil {
		return sum, nil, &FatalError{Err: err}
	}
	snap, err := c.store.Snapshot(ctx)
	if err != nil {
		return sum, nil, err
	}
	return sum, snap, nil
}

// Snapshot returns the current status of every target. It is empty before Run.
func (c *Controller) Snapshot(ctx context.Context) ([]repo.TargetStatus, error) {
	if c.store == nil {
		return nil, nil
	}
	return c.store.Snapshot(ctx)
}
