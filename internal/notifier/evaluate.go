package notifier

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"budgetbell/internal/models"
)

const (
	dateKeyLayout     = "2006-01-02"
	periodKeyAchieved = "achieved"
)

// Evaluators are pure: given an entity, the owner's preferences and the
// current time they return the candidate to emit, or nil. They never touch
// storage and never consult the dedup ledger.

// EvaluateBudget fires when current-month spend crosses the user's threshold,
// and again when it reaches the full limit.
func EvaluateBudget(item BudgetItem, prefs *models.NotificationPreferences, now time.Time) (*Candidate, error) {
	b := item.Budget
	if !prefs.BudgetEnabled() {
		return nil, nil
	}
	if b.Month != models.MonthOf(now) {
		return nil, nil
	}
	if b.Amount <= 0 {
		return nil, evalErr(SourceBudget, b.ID, fmt.Errorf("non-positive budget amount %d", b.Amount))
	}
	if err := prefs.ValidateBudgetThreshold(); err != nil {
		return nil, evalErr(SourceBudget, b.ID, err)
	}

	tier := 0
	for _, t := range []int{prefs.BudgetThreshold, 100} {
		// spent/amount >= t/100 without floating point
		if item.Spent*100 >= int64(t)*b.Amount && t > tier {
			tier = t
		}
	}
	if tier == 0 {
		return nil, nil
	}

	pct := item.Spent * 100 / b.Amount
	c := &Candidate{
		UserID:     b.UserID,
		Type:       models.NotificationTypeBudgetThreshold,
		SourceKind: SourceBudget,
		SourceID:   b.ID,
		PeriodKey:  fmt.Sprintf("%s:%d", b.Month, tier),
		Priority:   models.PriorityNormal,
	}
	if tier >= 100 {
		c.Priority = models.PriorityHigh
		c.Title = fmt.Sprintf("Budget exceeded: %s", b.Name)
		c.Message = fmt.Sprintf("You have spent %s of your %s budget for %s (%d%%).",
			formatCents(item.Spent), formatCents(b.Amount), b.Month, pct)
	} else {
		c.Title = fmt.Sprintf("Budget alert: %s", b.Name)
		c.Message = fmt.Sprintf("You have used %d%% of your %s budget for %s (%s spent).",
			pct, formatCents(b.Amount), b.Month, formatCents(item.Spent))
	}
	return c, nil
}

// EvaluateLoan fires once per payment cycle when the next installment is
// within the user's reminder window, or already overdue.
func EvaluateLoan(item LoanItem, prefs *models.NotificationPreferences, now time.Time) (*Candidate, error) {
	l := item.Loan
	if !l.IsActive || l.Balance <= 0 || !prefs.LoanEnabled() {
		return nil, nil
	}
	if l.StartDate.IsZero() {
		return nil, evalErr(SourceLoan, l.ID, errors.New("missing start date"))
	}
	if item.PaymentsMade < 0 {
		return nil, evalErr(SourceLoan, l.ID, fmt.Errorf("negative payment count %d", item.PaymentsMade))
	}
	if err := prefs.ValidateReminderDays(); err != nil {
		return nil, evalErr(SourceLoan, l.ID, err)
	}

	due := NextLoanDueDate(l.StartDate, item.PaymentsMade)
	days := DaysUntil(now, due)
	if days > prefs.ReminderDaysBefore {
		return nil, nil
	}

	c := &Candidate{
		UserID:     l.UserID,
		Type:       models.NotificationTypeLoanPaymentDue,
		SourceKind: SourceLoan,
		SourceID:   l.ID,
		PeriodKey:  due.Format(dateKeyLayout),
		Priority:   models.PriorityNormal,
		Title:      fmt.Sprintf("Loan payment due: %s", l.Name),
		Message: fmt.Sprintf("Your %s payment on %s is due %s.",
			formatCents(l.MonthlyPayment), l.Name, describeDue(days, due)),
	}
	if days < 0 {
		c.Priority = models.PriorityHigh
		c.Title = fmt.Sprintf("Loan payment overdue: %s", l.Name)
	}
	return c, nil
}

// EvaluateRecurring either auto-pays a due expense or reminds the user it is
// coming up. Auto-payment is bookkeeping the user opted into per expense, so
// it happens even when the recurring reminder channels are switched off.
func EvaluateRecurring(r models.RecurringExpense, prefs *models.NotificationPreferences, now time.Time) (*Candidate, error) {
	if !r.IsActive {
		return nil, nil
	}
	if r.NextDueDate.IsZero() {
		return nil, evalErr(SourceRecurringExpense, r.ID, errors.New("missing next due date"))
	}
	if r.ReminderDays < 0 {
		return nil, evalErr(SourceRecurringExpense, r.ID, fmt.Errorf("negative reminder days %d", r.ReminderDays))
	}

	days := DaysUntil(now, r.NextDueDate)
	due := r.NextDueDate.UTC()
	base := Candidate{
		UserID:     r.UserID,
		SourceKind: SourceRecurringExpense,
		SourceID:   r.ID,
		PeriodKey:  due.Format(dateKeyLayout),
		Priority:   models.PriorityNormal,
	}

	if r.AutoCreateTransaction && days <= 0 {
		c := base
		c.Type = models.NotificationTypeRecurringAutoPaid
		c.Title = fmt.Sprintf("Paid automatically: %s", r.Name)
		c.Message = fmt.Sprintf("%s of %s due %s was recorded as paid.",
			r.Name, formatCents(r.Amount), due.Format(dateKeyLayout))
		c.AutoPay = &AutoPayRequest{ExpenseID: r.ID, DueDate: r.NextDueDate, Amount: r.Amount}
		return &c, nil
	}

	if !prefs.RecurringEnabled() || days > r.ReminderDays {
		return nil, nil
	}
	c := base
	c.Type = models.NotificationTypeRecurringDue
	c.Title = fmt.Sprintf("Upcoming payment: %s", r.Name)
	c.Message = fmt.Sprintf("%s of %s is due %s.", r.Name, formatCents(r.Amount), describeDue(days, due))
	if days < 0 {
		c.Priority = models.PriorityHigh
		c.Title = fmt.Sprintf("Payment overdue: %s", r.Name)
	}
	return &c, nil
}

// EvaluateGoal announces the highest milestone reached, or the goal itself
// once the target amount is met.
func EvaluateGoal(g models.SavingsGoal, prefs *models.NotificationPreferences, now time.Time) (*Candidate, error) {
	if g.IsAchieved || !prefs.GoalEnabled() {
		return nil, nil
	}
	if g.TargetAmount <= 0 {
		return nil, evalErr(SourceSavingsGoal, g.ID, fmt.Errorf("non-positive target amount %d", g.TargetAmount))
	}

	base := Candidate{
		UserID:     g.UserID,
		SourceKind: SourceSavingsGoal,
		SourceID:   g.ID,
		Priority:   models.PriorityNormal,
	}

	if g.CurrentAmount >= g.TargetAmount {
		c := base
		c.Type = models.NotificationTypeSavingsGoalAchieved
		c.PeriodKey = periodKeyAchieved
		c.Priority = models.PriorityHigh
		c.Title = fmt.Sprintf("Goal achieved: %s", g.Name)
		c.Message = fmt.Sprintf("You reached your %s savings target for %s.", formatCents(g.TargetAmount), g.Name)
		c.MarkGoalAchieved = true
		return &c, nil
	}

	milestones, err := prefs.Milestones()
	if err != nil {
		return nil, evalErr(SourceSavingsGoal, g.ID, err)
	}
	reached := 0
	for _, m := range milestones {
		if g.CurrentAmount*100 >= int64(m)*g.TargetAmount {
			reached = m
		}
	}
	if reached == 0 {
		return nil, nil
	}

	c := base
	c.Type = models.NotificationTypeSavingsGoalMilestone
	c.PeriodKey = "milestone:" + strconv.Itoa(reached)
	c.Title = fmt.Sprintf("%d%% of %s saved", reached, g.Name)
	c.Message = fmt.Sprintf("You have saved %s of %s for %s.",
		formatCents(g.CurrentAmount), formatCents(g.TargetAmount), g.Name)
	return &c, nil
}

// NextLoanDueDate returns the due date of the installment after paymentsMade
// recorded payments. Installments fall monthly on the start date's day.
func NextLoanDueDate(start time.Time, paymentsMade int) time.Time {
	return models.AddMonthsClamped(truncateDay(start), paymentsMade+1)
}

// DaysUntil counts UTC calendar days from now to due. Negative means overdue.
func DaysUntil(now, due time.Time) int {
	return int(truncateDay(due).Sub(truncateDay(now)).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func describeDue(days int, due time.Time) string {
	switch {
	case days < 0:
		return fmt.Sprintf("since %s", due.Format(dateKeyLayout))
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days (%s)", days, due.Format(dateKeyLayout))
	}
}

func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s$%d.%02d", sign, c/100, c%100)
}

func evalErr(kind SourceKind, id string, err error) error {
	return &EvaluationError{EntityType: kind, EntityID: id, Err: err}
}
