package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"budgetbell/internal/logger"
	"budgetbell/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// SnapshotLoader loads everything one run evaluates.
type SnapshotLoader interface {
	Load(ctx context.Context, now time.Time) (*Snapshot, error)
}

// DedupGate checks the notification_marks ledger.
type DedupGate interface {
	ShouldEmit(ctx context.Context, c *Candidate) (bool, error)
}

// CandidateWriter persists candidates that passed the gate.
type CandidateWriter interface {
	Commit(ctx context.Context, c *Candidate) (*models.Notification, error)
}

// Evaluators holds the rule functions the orchestrator applies. Tests swap
// individual rules to inject failures.
type Evaluators struct {
	Budget    func(BudgetItem, *models.NotificationPreferences, time.Time) (*Candidate, error)
	Loan      func(LoanItem, *models.NotificationPreferences, time.Time) (*Candidate, error)
	Recurring func(models.RecurringExpense, *models.NotificationPreferences, time.Time) (*Candidate, error)
	Goal      func(models.SavingsGoal, *models.NotificationPreferences, time.Time) (*Candidate, error)
}

// DefaultEvaluators returns the production rule set.
func DefaultEvaluators() Evaluators {
	return Evaluators{
		Budget:    EvaluateBudget,
		Loan:      EvaluateLoan,
		Recurring: EvaluateRecurring,
		Goal:      EvaluateGoal,
	}
}

// Options tunes a run.
type Options struct {
	Workers     int
	ItemTimeout time.Duration
	LoadTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 8
	}
	if o.ItemTimeout <= 0 {
		o.ItemTimeout = 10 * time.Second
	}
	if o.LoadTimeout <= 0 {
		o.LoadTimeout = 30 * time.Second
	}
	return o
}

// ItemFailure describes one entity that could not be processed.
type ItemFailure struct {
	Kind       ErrorKind  `json:"kind"`
	EntityType SourceKind `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	UserID     string     `json:"user_id"`
	Error      string     `json:"error"`
}

// RunSummary reports what a run did.
type RunSummary struct {
	RunID                string        `json:"run_id"`
	StartedAt            time.Time     `json:"started_at"`
	FinishedAt           time.Time     `json:"finished_at"`
	Evaluated            int           `json:"evaluated"`
	Candidates           int           `json:"candidates"`
	Created              int           `json:"created"`
	Skipped              int           `json:"skipped"`
	Failed               int           `json:"failed"`
	PreferencesDefaulted int           `json:"preferences_defaulted"`
	Interrupted          bool          `json:"interrupted,omitempty"`
	Failures             []ItemFailure `json:"failures"`
}

// Outcome classifies the run for metrics: "ok", "partial" or "failed".
func (s *RunSummary) Outcome() string {
	switch {
	case s.Interrupted:
		return "failed"
	case s.Failed > 0:
		return "partial"
	default:
		return "ok"
	}
}

// Orchestrator performs one complete pass over all entities.
type Orchestrator struct {
	loader  SnapshotLoader
	gate    DedupGate
	writer  CandidateWriter
	clock   Clock
	metrics *Metrics
	opts    Options

	Evaluators Evaluators
}

// NewOrchestrator wires a run from its collaborators. metrics may be nil.
func NewOrchestrator(loader SnapshotLoader, gate DedupGate, writer CandidateWriter, clock Clock, metrics *Metrics, opts Options) *Orchestrator {
	if clock == nil {
		clock = SystemClock()
	}
	return &Orchestrator{
		loader:     loader,
		gate:       gate,
		writer:     writer,
		clock:      clock,
		metrics:    metrics,
		opts:       opts.withDefaults(),
		Evaluators: DefaultEvaluators(),
	}
}

// maxCatchUp bounds how many auto-payments one expense may commit in a run.
const maxCatchUp = 400

// workItem is one entity to evaluate. advance, when set, applies a committed
// candidate to the item's copy of the entity and reports whether the entity
// must be evaluated again in this run.
type workItem struct {
	kind    SourceKind
	id      string
	userID  string
	eval    func(*models.NotificationPreferences, time.Time) (*Candidate, error)
	advance func(*Candidate) bool
}

// collector accumulates results from concurrent workers.
type collector struct {
	mu      sync.Mutex
	summary *RunSummary
}

func (c *collector) add(fn func(s *RunSummary)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.summary)
}

// RunAllChecks evaluates every entity once and writes the notifications that
// are due. Per-entity failures are recorded in the summary and never abort
// the run; the only error returned is a load failure wrapping ErrLoadFailed.
func (o *Orchestrator) RunAllChecks(ctx context.Context) (*RunSummary, error) {
	now := o.clock.Now()
	summary := &RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: now,
		Failures:  []ItemFailure{},
	}
	log := logger.Named("notifier").With("run_id", summary.RunID)

	loadCtx, cancel := context.WithTimeout(ctx, o.opts.LoadTimeout)
	snap, err := o.loader.Load(loadCtx, now)
	cancel()
	if err != nil {
		summary.FinishedAt = o.clock.Now()
		o.metrics.ObserveRun("failed", summary.FinishedAt.Sub(now), summary.FinishedAt)
		log.Errorw("Failed to load reminder candidates", "error", err)
		return summary, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	prefs := o.resolvePreferences(snap, summary)
	items := o.workItems(snap)
	log.Infow("Reminder run started", "entities", len(items), "users", len(prefs))

	col := &collector{summary: summary}
	g := new(errgroup.Group)
	g.SetLimit(o.opts.Workers)
	for _, item := range items {
		item := item
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}
		g.Go(func() error {
			o.process(ctx, item, prefs[item.userID], now, col)
			return nil
		})
	}
	_ = g.Wait()

	summary.FinishedAt = o.clock.Now()
	o.metrics.ObserveRun(summary.Outcome(), summary.FinishedAt.Sub(now), summary.FinishedAt)
	log.Infow("Reminder run finished",
		"evaluated", summary.Evaluated,
		"candidates", summary.Candidates,
		"created", summary.Created,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"interrupted", summary.Interrupted,
		"duration", summary.FinishedAt.Sub(now).String(),
	)
	return summary, nil
}

// resolvePreferences returns preferences for every user in the snapshot,
// falling back to defaults for users without a row.
func (o *Orchestrator) resolvePreferences(snap *Snapshot, summary *RunSummary) map[string]*models.NotificationPreferences {
	log := logger.Named("notifier")
	out := make(map[string]*models.NotificationPreferences, len(snap.Users))
	for _, id := range snap.userIDs() {
		if p, ok := snap.Preferences[id]; ok {
			out[id] = p
			continue
		}
		cerr := &ConfigurationError{UserID: id, Err: errors.New("no preferences row, using defaults")}
		log.Warnw("Using default notification preferences", "user_id", id, "error", cerr)
		out[id] = models.DefaultPreferences(id)
		summary.PreferencesDefaulted++
	}
	return out
}

func (o *Orchestrator) workItems(snap *Snapshot) []workItem {
	ev := o.Evaluators
	items := make([]workItem, 0, snap.EntityCount())
	for _, b := range snap.Budgets {
		b := b
		items = append(items, workItem{
			kind: SourceBudget, id: b.Budget.ID, userID: b.Budget.UserID,
			eval: func(p *models.NotificationPreferences, now time.Time) (*Candidate, error) {
				return ev.Budget(b, p, now)
			},
		})
	}
	for _, l := range snap.Loans {
		l := l
		items = append(items, workItem{
			kind: SourceLoan, id: l.Loan.ID, userID: l.Loan.UserID,
			eval: func(p *models.NotificationPreferences, now time.Time) (*Candidate, error) {
				return ev.Loan(l, p, now)
			},
		})
	}
	for _, r := range snap.Recurring {
		r := r
		items = append(items, workItem{
			kind: SourceRecurringExpense, id: r.ID, userID: r.UserID,
			eval: func(p *models.NotificationPreferences, now time.Time) (*Candidate, error) {
				return ev.Recurring(r, p, now)
			},
			// An auto-payment moves the due date one step, which may still be
			// overdue or inside the reminder window.
			advance: func(c *Candidate) bool {
				if c.AutoPay == nil {
					return false
				}
				r.NextDueDate = r.Frequency.Next(r.NextDueDate)
				return true
			},
		})
	}
	for _, g := range snap.Goals {
		g := g
		items = append(items, workItem{
			kind: SourceSavingsGoal, id: g.ID, userID: g.UserID,
			eval: func(p *models.NotificationPreferences, now time.Time) (*Candidate, error) {
				return ev.Goal(g, p, now)
			},
		})
	}
	return items
}

// process runs evaluate, gate and commit for one entity. Entities whose
// committed candidate changes their own state are evaluated again until
// nothing more is due.
func (o *Orchestrator) process(ctx context.Context, item workItem, prefs *models.NotificationPreferences, now time.Time, col *collector) {
	if prefs == nil {
		prefs = models.DefaultPreferences(item.userID)
	}
	col.add(func(s *RunSummary) { s.Evaluated++ })

	for pass := 1; ; pass++ {
		cand, created := o.step(ctx, item, prefs, now, col)
		if !created || item.advance == nil || !item.advance(cand) {
			return
		}
		if pass >= maxCatchUp {
			logger.Named("notifier").Warnw("Catch-up limit reached, continuing next run",
				"entity_type", item.kind, "entity_id", item.id, "passes", pass)
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// step performs one evaluate, gate and commit cycle and reports the
// candidate and whether a notification was created for it.
func (o *Orchestrator) step(ctx context.Context, item workItem, prefs *models.NotificationPreferences, now time.Time, col *collector) (*Candidate, bool) {
	cand, err := o.evaluate(item, prefs, now)
	if err != nil {
		o.fail(col, item, err)
		return nil, false
	}
	if cand == nil {
		return nil, false
	}
	col.add(func(s *RunSummary) { s.Candidates++ })

	itemCtx, cancel := context.WithTimeout(ctx, o.opts.ItemTimeout)
	defer cancel()

	ok, err := o.gate.ShouldEmit(itemCtx, cand)
	if err != nil {
		o.fail(col, item, err)
		return cand, false
	}
	if !ok {
		o.skip(col, cand)
		return cand, false
	}

	n, err := o.writer.Commit(itemCtx, cand)
	switch {
	case errors.Is(err, ErrAlreadyNotified):
		o.skip(col, cand)
		return cand, false
	case err != nil:
		o.fail(col, item, err)
		return cand, false
	}
	col.add(func(s *RunSummary) { s.Created++ })
	o.metrics.IncrementCreated(string(cand.Type))
	logger.Named("notifier").Debugw("Notification created", "key", cand.Key(), "notification_id", n.ID)
	return cand, true
}

// evaluate applies the rule, converting a panic into an EvaluationError.
func (o *Orchestrator) evaluate(item workItem, prefs *models.NotificationPreferences, now time.Time) (cand *Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			cand = nil
			err = &EvaluationError{EntityType: item.kind, EntityID: item.id, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	cand, err = item.eval(prefs, now)
	if err != nil {
		var ee *EvaluationError
		if !errors.As(err, &ee) {
			err = &EvaluationError{EntityType: item.kind, EntityID: item.id, Err: err}
		}
	}
	return cand, err
}

func (o *Orchestrator) skip(col *collector, cand *Candidate) {
	col.add(func(s *RunSummary) { s.Skipped++ })
	o.metrics.IncrementSkipped(string(cand.Type))
}

func (o *Orchestrator) fail(col *collector, item workItem, err error) {
	kind := kindOf(err)
	col.add(func(s *RunSummary) {
		s.Failed++
		s.Failures = append(s.Failures, ItemFailure{
			Kind:       kind,
			EntityType: item.kind,
			EntityID:   item.id,
			UserID:     item.userID,
			Error:      err.Error(),
		})
	})
	o.metrics.IncrementItemFailure(kind)
	logger.Named("notifier").Warnw("Reminder item failed",
		"kind", kind, "entity_type", item.kind, "entity_id", item.id, "user_id", item.userID, "error", err)
}
