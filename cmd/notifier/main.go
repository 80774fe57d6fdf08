// Command notifier runs the reminder engine outside the API process, either
// once (for cron) or on its own interval.
package main

import (
	"errors"
	"os"

	"budgetbell/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := newRootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			logger.Sync()
			os.Exit(exit.code)
		}
		logger.Get().Errorf("notifier: %v", err)
		logger.Sync()
		os.Exit(1)
	}
}
