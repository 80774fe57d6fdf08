package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgetbell/internal/errors"
	"budgetbell/internal/services"
)

// RecurringExpenseHandler handles manual payments of recurring expenses.
type RecurringExpenseHandler struct {
	recurringService services.RecurringExpenseServicer
	auditService     services.AuditServicer
	now              func() time.Time
}

// NewRecurringExpenseHandler creates a new RecurringExpenseHandler.
func NewRecurringExpenseHandler(recurringService services.RecurringExpenseServicer, auditService services.AuditServicer) *RecurringExpenseHandler {
	return &RecurringExpenseHandler{
		recurringService: recurringService,
		auditService:     auditService,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// RecordPaymentRequest represents a manual payment. PaidAt defaults to now.
type RecordPaymentRequest struct {
	PaidAt *time.Time `json:"paid_at"`
}

// RecordPayment records a payment and advances the expense's next due date.
// @Summary     Record a recurring expense payment
// @Tags        recurring-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true  "Recurring expense ID"
// @Param       request body RecordPaymentRequest false "Payment details"
// @Success     201 {object} models.Transaction "Payment recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Recurring expense not found"
// @Failure     409 {object} ErrorResponse "Recurring expense inactive or already advanced"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-expenses/{id}/payments [post]
func (h *RecurringExpenseHandler) RecordPayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	// An empty body is allowed.
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	paidAt := h.now()
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}

	txn, expense, err := h.recurringService.RecordPayment(userID, expenseID, paidAt)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditActionRecordPayment, "recurring_expense", expenseID, c.ClientIP(),
		map[string]interface{}{"transaction_id": txn.ID, "amount": txn.Amount, "next_due_date": expense.NextDueDate})
	c.JSON(http.StatusCreated, gin.H{"transaction": txn, "recurring_expense": expense})
}
