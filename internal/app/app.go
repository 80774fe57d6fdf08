// Package app wires configuration, storage and the reminder engine into the
// processes under cmd/.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"budgetbell/internal/config"
	"budgetbell/internal/database"
	"budgetbell/internal/logger"
	"budgetbell/internal/notifier"
	"budgetbell/internal/services"
)

// App holds the long-lived dependencies shared by the API and the notifier CLI.
type App struct {
	Config *config.Config

	DB    *database.Manager
	Redis *database.RedisClient

	Notifications services.NotificationServicer
	Preferences   services.PreferencesServicer
	Recurring     services.RecurringExpenseServicer
	Audit         services.AuditServicer

	Metrics      *notifier.Metrics
	Orchestrator *notifier.Orchestrator
	Trigger      *notifier.Trigger

	registry *prometheus.Registry
}

// New connects to the database (running migrations), optionally to Redis,
// and builds the services and reminder engine. reg may be nil to disable metrics.
func New(ctx context.Context, cfg *config.Config, reg *prometheus.Registry) (*App, error) {
	dbConfig, err := database.NewConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.RunMigrations(); err != nil {
		_ = dbManager.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	redisClient, err := database.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		_ = dbManager.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	a := &App{Config: cfg, DB: dbManager, Redis: redisClient, registry: reg}
	a.wire(dbManager.DB(), reg)
	return a, nil
}

func (a *App) wire(db *gorm.DB, reg *prometheus.Registry) {
	cfg := a.Config
	clock := notifier.SystemClock()

	a.Notifications = services.NewNotificationService(db)
	a.Preferences = services.NewPreferencesService(db)
	a.Recurring = services.NewRecurringExpenseService(db)
	a.Audit = services.NewAuditService(db)

	if reg != nil {
		a.Metrics = notifier.NewMetrics(reg)
	}

	a.Orchestrator = notifier.NewOrchestrator(
		notifier.NewStore(db),
		notifier.NewGate(db),
		notifier.NewWriter(db, a.Recurring, clock),
		clock,
		a.Metrics,
		notifier.Options{
			Workers:     cfg.SchedulerWorkers,
			ItemTimeout: cfg.SchedulerItemTimeout,
			LoadTimeout: cfg.SchedulerLoadTimeout,
		},
	)

	var locker notifier.Locker
	if a.Redis != nil {
		locker = notifier.NewRedisLocker(a.Redis.Client)
		logger.Get().Info("Redis run lock enabled")
	}

	a.Trigger = notifier.NewTrigger(a.Orchestrator, clock, locker, a.Metrics, notifier.TriggerOptions{
		Interval:   cfg.SchedulerInterval,
		RunTimeout: cfg.SchedulerRunTimeout,
		RunOnStart: true,
		LockTTL:    cfg.RedisLockTTL,
	})
	a.Trigger.OnRunComplete = a.recordScheduledRun
}

// recordScheduledRun audits a finished scheduled run. Skipped and failed runs
// have no summary and are already logged by the trigger.
func (a *App) recordScheduledRun(summary *notifier.RunSummary, err error) {
	if summary == nil {
		return
	}
	changes := map[string]interface{}{
		"evaluated": summary.Evaluated,
		"created":   summary.Created,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
	}
	if err != nil {
		changes["error"] = err.Error()
	}
	a.Audit.Log("", services.AuditActionScheduledRun, "reminder_run", summary.RunID, "", changes)
}

// Close stops the trigger and releases connections.
func (a *App) Close() error {
	a.Trigger.Stop()

	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	errs = append(errs, a.DB.Close())
	return errors.Join(errs...)
}
