// Package notifier is the reminder engine. It evaluates budgets, loans,
// recurring expenses and savings goals against each user's preferences and
// writes at most one notification per (user, type, entity, period) occurrence.
//
// A run is stateless: everything that says "already notified" lives in the
// notification_marks table, so an interrupted run can simply be repeated.
package notifier

import (
	"fmt"
	"time"

	"budgetbell/internal/models"
)

// SourceKind names the entity a candidate was derived from.
type SourceKind string

const (
	SourceBudget           SourceKind = "budget"
	SourceLoan             SourceKind = "loan"
	SourceRecurringExpense SourceKind = "recurring_expense"
	SourceSavingsGoal      SourceKind = "savings_goal"
)

// Candidate is a notification an evaluator wants to emit, not yet checked
// against the dedup ledger.
type Candidate struct {
	UserID      string
	Type        models.NotificationType
	SourceKind  SourceKind
	SourceID    string
	PeriodKey   string
	Title       string
	Message     string
	Priority    models.NotificationPriority
	ScheduledAt *time.Time

	// AutoPay asks the writer to record the expense payment in the same
	// transaction as the notification.
	AutoPay *AutoPayRequest
	// MarkGoalAchieved stamps the goal's achievement flags on commit.
	MarkGoalAchieved bool
}

// AutoPayRequest describes the transaction to create for an auto-paid recurring expense.
type AutoPayRequest struct {
	ExpenseID string
	DueDate   time.Time
	Amount    int64
}

// Key is the dedup key of the candidate, used in logs.
func (c *Candidate) Key() string {
	return fmt.Sprintf("%s/%s/%s/%s", c.UserID, c.Type, c.SourceID, c.PeriodKey)
}

// BudgetItem is a current-month budget with its derived spend.
type BudgetItem struct {
	Budget models.Budget
	Spent  int64
}

// LoanItem is an active loan with the number of payments recorded so far.
type LoanItem struct {
	Loan         models.Loan
	PaymentsMade int
}

// Snapshot is everything one run evaluates, loaded in a handful of batched queries.
type Snapshot struct {
	Users       map[string]*models.User
	Preferences map[string]*models.NotificationPreferences
	Budgets     []BudgetItem
	Loans       []LoanItem
	Recurring   []models.RecurringExpense
	Goals       []models.SavingsGoal
}

// EntityCount returns the number of entities in the snapshot.
func (s *Snapshot) EntityCount() int {
	return len(s.Budgets) + len(s.Loans) + len(s.Recurring) + len(s.Goals)
}
