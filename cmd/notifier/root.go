package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"budgetbell/internal/app"
	"budgetbell/internal/config"
	"budgetbell/internal/logger"
)

// exitError carries a process exit code without an error message.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "notifier",
		Short:         "BudgetBell reminder engine",
		Long:          "Evaluate budgets, loans, recurring expenses and savings goals and create in-app notifications.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newLoopCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run all reminder checks once and print the summary as JSON",
		Long:  "Run all reminder checks once. Exits 2 when any item failed, 1 when the run could not start.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := open(ctx, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if timeout <= 0 {
				timeout = a.Config.SchedulerRunTimeout
			}
			runCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			summary, err := a.Trigger.RunNow(runCtx)
			if summary != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(summary); encErr != nil {
					return encErr
				}
			}
			if err != nil {
				return err
			}
			if summary.Failed > 0 || summary.Interrupted {
				return &exitError{code: 2}
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Maximum run duration (default SCHEDULER_RUN_TIMEOUT)")
	return cmd
}

func newLoopCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "loop",
		Short: "Run reminder checks on an interval until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := open(ctx, func(cfg *config.Config) {
				if interval > 0 {
					cfg.SchedulerInterval = interval
				}
			})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Trigger.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			logger.Get().Info("Shutdown signal received")
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Time between runs (default SCHEDULER_INTERVAL)")
	return cmd
}

func open(ctx context.Context, override func(*config.Config)) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if override != nil {
		override(cfg)
	}
	return app.New(ctx, cfg, nil)
}
