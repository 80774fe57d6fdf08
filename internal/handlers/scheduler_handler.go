package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetbell/internal/errors"
	"budgetbell/internal/notifier"
	"budgetbell/internal/services"
)

// SchedulerRunner starts an out-of-band reminder run.
type SchedulerRunner interface {
	RunNow(ctx context.Context) (*notifier.RunSummary, error)
}

// SchedulerHandler exposes the reminder engine to operators.
type SchedulerHandler struct {
	runner       SchedulerRunner
	auditService services.AuditServicer
}

// NewSchedulerHandler creates a new SchedulerHandler.
func NewSchedulerHandler(runner SchedulerRunner, auditService services.AuditServicer) *SchedulerHandler {
	return &SchedulerHandler{runner: runner, auditService: auditService}
}

// RunReminders runs all reminder checks and returns the run summary.
// @Summary     Run reminder checks now
// @Description Evaluate every budget, loan, recurring expense and savings goal once
// @Tags        admin
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {object} notifier.RunSummary "Run summary"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     409 {object} ErrorResponse "Run already in progress"
// @Failure     503 {object} ErrorResponse "Run could not load its candidates"
// @Router      /admin/reminders/run [post]
func (h *SchedulerHandler) RunReminders(c *gin.Context) {
	summary, err := h.runner.RunNow(c.Request.Context())
	switch {
	case errors.Is(err, notifier.ErrRunInProgress):
		respondWithError(c, apperrors.ErrRunInProgress)
		return
	case errors.Is(err, notifier.ErrLoadFailed):
		respondWithError(c, apperrors.Wrap(apperrors.ErrRunFailed, err))
		return
	case err != nil:
		respondWithError(c, err)
		return
	}

	h.auditService.Log("", services.AuditActionTriggerReminderRun, "reminder_run", summary.RunID, c.ClientIP(),
		map[string]interface{}{"created": summary.Created, "skipped": summary.Skipped, "failed": summary.Failed})
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
