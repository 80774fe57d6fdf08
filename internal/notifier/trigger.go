package notifier

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"budgetbell/internal/logger"
)

// Runner performs one reminder run.
type Runner interface {
	RunAllChecks(ctx context.Context) (*RunSummary, error)
}

// TriggerOptions configures the periodic trigger.
type TriggerOptions struct {
	Interval   time.Duration
	RunTimeout time.Duration
	RunOnStart bool

	// LockKey and LockTTL are used only when a Locker is configured.
	LockKey string
	LockTTL time.Duration
}

const defaultLockKey = "budgetbell:reminders:run"

// Trigger invokes a Runner on a fixed interval and on demand. At most one run
// executes per process; ticks that arrive while a run is in flight are
// skipped, not queued.
type Trigger struct {
	runner  Runner
	clock   Clock
	locker  Locker
	metrics *Metrics
	opts    TriggerOptions

	running atomic.Bool
	runs    sync.WaitGroup

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	// OnRunComplete, if set, is called after every scheduled run.
	OnRunComplete func(*RunSummary, error)
}

// NewTrigger returns a stopped Trigger. locker and metrics may be nil.
func NewTrigger(runner Runner, clock Clock, locker Locker, metrics *Metrics, opts TriggerOptions) *Trigger {
	if clock == nil {
		clock = SystemClock()
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 10 * time.Minute
	}
	if opts.LockKey == "" {
		opts.LockKey = defaultLockKey
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = opts.RunTimeout + time.Minute
	}
	return &Trigger{runner: runner, clock: clock, locker: locker, metrics: metrics, opts: opts}
}

// Start begins ticking. It returns immediately; call Stop to shut down.
func (t *Trigger) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return errors.New("trigger already started")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})

	ticker := t.clock.NewTicker(t.opts.Interval)
	logger.Named("scheduler").Infow("Reminder trigger started", "interval", t.opts.Interval.String())

	go func() {
		defer close(t.done)
		defer ticker.Stop()

		if t.opts.RunOnStart {
			t.fire(loopCtx)
		}
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C():
				t.fire(loopCtx)
			}
		}
	}()
	return nil
}

// Stop cancels the ticker and any in-flight run, then waits for both to exit.
func (t *Trigger) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	t.runs.Wait()
	logger.Named("scheduler").Info("Reminder trigger stopped")
}

// RunNow executes a run synchronously. It returns ErrRunInProgress when a run
// is already executing in this process or, with a Locker, in another one.
func (t *Trigger) RunNow(ctx context.Context) (*RunSummary, error) {
	if !t.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	t.runs.Add(1)
	defer t.runs.Done()
	defer t.running.Store(false)

	return t.execute(ctx)
}

// Running reports whether a run is executing in this process.
func (t *Trigger) Running() bool {
	return t.running.Load()
}

// fire starts a scheduled run in the background unless one is in flight.
func (t *Trigger) fire(ctx context.Context) {
	if !t.running.CompareAndSwap(false, true) {
		t.metrics.IncrementTriggerSkipped("in_progress")
		logger.Named("scheduler").Warn("Previous reminder run still in progress, skipping tick")
		return
	}
	t.runs.Add(1)
	go func() {
		defer t.runs.Done()
		defer t.running.Store(false)

		summary, err := t.execute(ctx)
		if errors.Is(err, ErrRunInProgress) {
			t.metrics.IncrementTriggerSkipped("locked")
		}
		if t.OnRunComplete != nil {
			t.OnRunComplete(summary, err)
		}
	}()
}

// execute takes the optional cross-process lease and performs the run.
func (t *Trigger) execute(ctx context.Context) (*RunSummary, error) {
	log := logger.Named("scheduler")
	runCtx, cancel := context.WithTimeout(ctx, t.opts.RunTimeout)
	defer cancel()

	if t.locker != nil {
		release, ok, err := t.locker.Acquire(runCtx, t.opts.LockKey, t.opts.LockTTL)
		switch {
		case err != nil:
			// The unique index still prevents duplicates, so run without the lease.
			log.Warnw("Run lock unavailable, continuing without it", "error", err)
		case !ok:
			log.Infow("Reminder run held by another instance, skipping")
			return nil, ErrRunInProgress
		default:
			defer func() {
				// runCtx may already be done; release on a fresh short context.
				relCtx, relCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer relCancel()
				if err := release(relCtx); err != nil {
					log.Warnw("Failed to release run lock", "error", err)
				}
			}()
		}
	}

	summary, err := t.runner.RunAllChecks(runCtx)
	if err != nil {
		log.Errorw("Reminder run failed", "error", err)
	}
	return summary, err
}
