package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetbell/internal/errors"
	"budgetbell/internal/services"
)

// PreferencesHandler handles notification preference requests.
type PreferencesHandler struct {
	preferencesService services.PreferencesServicer
	auditService       services.AuditServicer
}

// NewPreferencesHandler creates a new PreferencesHandler.
func NewPreferencesHandler(preferencesService services.PreferencesServicer, auditService services.AuditServicer) *PreferencesHandler {
	return &PreferencesHandler{preferencesService: preferencesService, auditService: auditService}
}

// UpdatePreferencesRequest represents a partial preferences update.
type UpdatePreferencesRequest struct {
	EmailBudget        *bool   `json:"email_budget"`
	PushBudget         *bool   `json:"push_budget"`
	EmailLoan          *bool   `json:"email_loan"`
	PushLoan           *bool   `json:"push_loan"`
	EmailRecurring     *bool   `json:"email_recurring"`
	PushRecurring      *bool   `json:"push_recurring"`
	EmailGoal          *bool   `json:"email_goal"`
	PushGoal           *bool   `json:"push_goal"`
	BudgetThreshold    *int    `json:"budget_threshold" binding:"omitempty,min=1,max=100"`
	ReminderDaysBefore *int    `json:"reminder_days_before" binding:"omitempty,min=0,max=30"`
	GoalMilestones     *string `json:"goal_milestones" binding:"omitempty,milestone_list"`
}

// GetPreferences returns the stored preferences or the defaults.
// @Summary     Get notification preferences
// @Tags        preferences
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.NotificationPreferences "Preferences"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /preferences [get]
func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	prefs, err := h.preferencesService.GetPreferences(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

// UpdatePreferences applies a partial update to the user's preferences.
// @Summary     Update notification preferences
// @Tags        preferences
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdatePreferencesRequest true "Fields to change"
// @Success     200 {object} models.NotificationPreferences "Preferences"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /preferences [put]
func (h *PreferencesHandler) UpdatePreferences(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	prefs, err := h.preferencesService.UpdatePreferences(userID, services.PreferencesUpdate{
		EmailBudget:        req.EmailBudget,
		PushBudget:         req.PushBudget,
		EmailLoan:          req.EmailLoan,
		PushLoan:           req.PushLoan,
		EmailRecurring:     req.EmailRecurring,
		PushRecurring:      req.PushRecurring,
		EmailGoal:          req.EmailGoal,
		PushGoal:           req.PushGoal,
		BudgetThreshold:    req.BudgetThreshold,
		ReminderDaysBefore: req.ReminderDaysBefore,
		GoalMilestones:     req.GoalMilestones,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionUpdatePreferences, "notification_preferences", prefs.ID, c.ClientIP(),
		changedFields(req))
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

func changedFields(req UpdatePreferencesRequest) map[string]interface{} {
	changes := map[string]interface{}{}
	set := func(name string, v interface{}, present bool) {
		if present {
			changes[name] = v
		}
	}
	set("email_budget", req.EmailBudget, req.EmailBudget != nil)
	set("push_budget", req.PushBudget, req.PushBudget != nil)
	set("email_loan", req.EmailLoan, req.EmailLoan != nil)
	set("push_loan", req.PushLoan, req.PushLoan != nil)
	set("email_recurring", req.EmailRecurring, req.EmailRecurring != nil)
	set("push_recurring", req.PushRecurring, req.PushRecurring != nil)
	set("email_goal", req.EmailGoal, req.EmailGoal != nil)
	set("push_goal", req.PushGoal, req.PushGoal != nil)
	set("budget_threshold", req.BudgetThreshold, req.BudgetThreshold != nil)
	set("reminder_days_before", req.ReminderDaysBefore, req.ReminderDaysBefore != nil)
	set("goal_milestones", req.GoalMilestones, req.GoalMilestones != nil)
	return changes
}
