package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimealert/internal/logging"
)

const (
	OverlapSkip  = "skip"
	OverlapAllow = "allow"
)

var parser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Job is one check cycle. A returned error is an internal fault.
type Job func(ctx context.Context) error

// Scheduler fires Job on a cron schedule.
//
// With OverlapSkip a tick that arrives while the previous cycle is still
// running is dropped. With OverlapAllow cycles may run concurrently.
// A panicking cycle is reported through onFault instead of crashing the
// process.
type Scheduler struct {
	log     *zap.Logger
	cron    *cron.Cron
	job     Job
	onFault func(error)
	sched   cron.Schedule
	entry   cron.EntryID

	mu  sync.Mutex
	ctx context.Context
}

func New(log *zap.Logger, spec, overlap string, job Job, onFault func(error)) (*Scheduler, error) {
	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	clog := logging.NewCronLogger(log)
	var wrappers []cron.JobWrapper
	switch overlap {
	case OverlapSkip, "":
		wrappers = append(wrappers, cron.SkipIfStillRunning(clog))
	case OverlapAllow:
	default:
		return nil, fmt.Errorf("unknown overlap policy %q", overlap)
	}

	s := &Scheduler{
		log:     log,
		job:     job,
		onFault: onFault,
		sched:   sched,
		ctx:     context.Background(),
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(clog),
			cron.WithChain(wrappers...),
		),
	}
	s.entry = s.cron.Schedule(sched, cron.FuncJob(s.tick))
	return s, nil
}

// RunNow runs one cycle synchronously. A fault reported by the cycle, or a
// panic inside it, is returned as an error.
func (s *Scheduler) RunNow(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("cycle_panic", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("check cycle panicked: %v", r)
		}
	}()
	if err := s.job(ctx); err != nil {
		s.log.Error("cycle_fault", zap.Error(err))
		return fmt.Errorf("check cycle: %w", err)
	}
	return nil
}

// Start begins firing scheduled cycles with ctx. Cycles keep ctx after Stop,
// so pass a context that outlives shutdown if in-flight cycles should finish.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
	s.log.Info("scheduler_started", zap.Time("next", s.sched.Next(time.Now())))
}

// Stop prevents further cycles. It does not wait for a running one; the
// returned context is done once it has finished.
func (s *Scheduler) Stop() context.Context {
	done := s.cron.Stop()
	s.log.Info("scheduler_stopped")
	return done
}

// Next returns the time of the next scheduled cycle, or zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if err := s.RunNow(ctx); err != nil && s.onFault != nil {
		s.onFault(err)
	}
}
