package notifier

import (
	"testing"
	"time"

	"budgetbell/internal/models"
	"budgetbell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prefsWith(mutate func(*models.NotificationPreferences)) *models.NotificationPreferences {
	p := models.DefaultPreferences("user-1")
	if mutate != nil {
		mutate(p)
	}
	return p
}

func budgetItem(amount, spent int64, month string) BudgetItem {
	return BudgetItem{
		Budget: models.Budget{
			Base:   models.Base{ID: "budget-1"},
			UserID: "user-1",
			Name:   "Groceries",
			Amount: amount,
			Month:  month,
		},
		Spent: spent,
	}
}

func TestEvaluateBudget(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		item         BudgetItem
		prefs        *models.NotificationPreferences
		wantKey      string
		wantPriority models.NotificationPriority
	}{
		{"below_threshold", budgetItem(100000, 79999, "2026-03"), prefsWith(nil), "", ""},
		{"exactly_threshold", budgetItem(100000, 80000, "2026-03"), prefsWith(nil), "2026-03:80", models.PriorityNormal},
		{"between_tiers", budgetItem(1000, 850, "2026-03"), prefsWith(nil), "2026-03:80", models.PriorityNormal},
		{"over_limit", budgetItem(1000, 1200, "2026-03"), prefsWith(nil), "2026-03:100", models.PriorityHigh},
		{"threshold_100_single_tier", budgetItem(1000, 1000, "2026-03"),
			prefsWith(func(p *models.NotificationPreferences) { p.BudgetThreshold = 100 }), "2026-03:100", models.PriorityHigh},
		{"other_month_ignored", budgetItem(1000, 5000, "2026-02"), prefsWith(nil), "", ""},
		{"channels_off", budgetItem(1000, 900, "2026-03"),
			prefsWith(func(p *models.NotificationPreferences) { p.EmailBudget, p.PushBudget = false, false }), "", ""},
		{"push_only_still_fires", budgetItem(1000, 900, "2026-03"),
			prefsWith(func(p *models.NotificationPreferences) { p.EmailBudget = false }), "2026-03:80", models.PriorityNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := EvaluateBudget(tt.item, tt.prefs, now)
			require.NoError(t, err)
			if tt.wantKey == "" {
				assert.Nil(t, c)
				return
			}
			require.NotNil(t, c)
			assert.Equal(t, models.NotificationTypeBudgetThreshold, c.Type)
			assert.Equal(t, tt.wantKey, c.PeriodKey)
			assert.Equal(t, tt.wantPriority, c.Priority)
			assert.Equal(t, "budget-1", c.SourceID)
			assert.Equal(t, SourceBudget, c.SourceKind)
		})
	}
}

func TestEvaluateBudget_Invalid(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("bad_threshold", func(t *testing.T) {
		p := prefsWith(func(p *models.NotificationPreferences) { p.BudgetThreshold = 150 })
		_, err := EvaluateBudget(budgetItem(1000, 900, "2026-03"), p, now)
		var ee *EvaluationError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, "budget-1", ee.EntityID)
	})

	t.Run("zero_amount", func(t *testing.T) {
		_, err := EvaluateBudget(budgetItem(0, 900, "2026-03"), prefsWith(nil), now)
		var ee *EvaluationError
		require.ErrorAs(t, err, &ee)
	})
}

func loanItem(start time.Time, payments int) LoanItem {
	return LoanItem{
		Loan: models.Loan{
			Base:           models.Base{ID: "loan-1"},
			UserID:         "user-1",
			Name:           "Car",
			Balance:        500000,
			MonthlyPayment: 25000,
			StartDate:      start,
			IsActive:       true,
		},
		PaymentsMade: payments,
	}
}

func TestNextLoanDueDate(t *testing.T) {
	start := testutil.Day(2026, 1, 31)
	assert.Equal(t, testutil.Day(2026, 2, 28), NextLoanDueDate(start, 0))
	assert.Equal(t, testutil.Day(2026, 3, 31), NextLoanDueDate(start, 1))
	assert.Equal(t, testutil.Day(2026, 4, 30), NextLoanDueDate(start, 2))
}

func TestEvaluateLoan(t *testing.T) {
	start := testutil.Day(2026, 1, 10) // first installment due 2026-02-10

	tests := []struct {
		name         string
		now          time.Time
		item         LoanItem
		days         int
		wantKey      string
		wantPriority models.NotificationPriority
	}{
		{"outside_window", testutil.Day(2026, 2, 6), loanItem(start, 0), 3, "", ""},
		{"window_edge", testutil.Day(2026, 2, 7), loanItem(start, 0), 3, "2026-02-10", models.PriorityNormal},
		{"due_today_late_hour", time.Date(2026, 2, 10, 23, 59, 0, 0, time.UTC), loanItem(start, 0), 0, "2026-02-10", models.PriorityNormal},
		{"overdue", testutil.Day(2026, 2, 12), loanItem(start, 0), 3, "2026-02-10", models.PriorityHigh},
		{"second_cycle", testutil.Day(2026, 3, 9), loanItem(start, 1), 3, "2026-03-10", models.PriorityNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := prefsWith(func(p *models.NotificationPreferences) { p.ReminderDaysBefore = tt.days })
			c, err := EvaluateLoan(tt.item, p, tt.now)
			require.NoError(t, err)
			if tt.wantKey == "" {
				assert.Nil(t, c)
				return
			}
			require.NotNil(t, c)
			assert.Equal(t, models.NotificationTypeLoanPaymentDue, c.Type)
			assert.Equal(t, tt.wantKey, c.PeriodKey)
			assert.Equal(t, tt.wantPriority, c.Priority)
		})
	}

	t.Run("paid_off", func(t *testing.T) {
		item := loanItem(start, 0)
		item.Loan.Balance = 0
		c, err := EvaluateLoan(item, prefsWith(nil), testutil.Day(2026, 2, 10))
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("invalid_reminder_days", func(t *testing.T) {
		p := prefsWith(func(p *models.NotificationPreferences) { p.ReminderDaysBefore = 45 })
		_, err := EvaluateLoan(loanItem(start, 0), p, testutil.Day(2026, 2, 10))
		var ee *EvaluationError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, SourceLoan, ee.EntityType)
	})
}

func recurring(nextDue time.Time, reminderDays int, auto bool) models.RecurringExpense {
	return models.RecurringExpense{
		Base:                  models.Base{ID: "rec-1"},
		UserID:                "user-1",
		Name:                  "Rent",
		Amount:                150000,
		Frequency:             models.FrequencyMonthly,
		NextDueDate:           nextDue,
		IsActive:              true,
		ReminderDays:          reminderDays,
		AutoCreateTransaction: auto,
	}
}

func TestEvaluateRecurring(t *testing.T) {
	due := testutil.Day(2026, 5, 1)

	t.Run("reminder_window_three_days", func(t *testing.T) {
		c, err := EvaluateRecurring(recurring(due, 3, false), prefsWith(nil), testutil.Day(2026, 4, 28))
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, models.NotificationTypeRecurringDue, c.Type)
		assert.Equal(t, "2026-05-01", c.PeriodKey)
		assert.Nil(t, c.AutoPay)
	})

	t.Run("reminder_window_one_day", func(t *testing.T) {
		c, err := EvaluateRecurring(recurring(due, 1, false), prefsWith(nil), testutil.Day(2026, 4, 28))
		require.NoError(t, err)
		assert.Nil(t, c)

		c, err = EvaluateRecurring(recurring(due, 1, false), prefsWith(nil), testutil.Day(2026, 4, 30))
		require.NoError(t, err)
		assert.NotNil(t, c)
	})

	t.Run("inactive", func(t *testing.T) {
		r := recurring(due, 3, false)
		r.IsActive = false
		c, err := EvaluateRecurring(r, prefsWith(nil), testutil.Day(2026, 5, 1))
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("auto_pay_on_due_date", func(t *testing.T) {
		c, err := EvaluateRecurring(recurring(due, 3, true), prefsWith(nil), testutil.Day(2026, 5, 1))
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, models.NotificationTypeRecurringAutoPaid, c.Type)
		require.NotNil(t, c.AutoPay)
		assert.Equal(t, "rec-1", c.AutoPay.ExpenseID)
		assert.Equal(t, due, c.AutoPay.DueDate)
	})

	t.Run("auto_pay_before_due_still_reminds", func(t *testing.T) {
		c, err := EvaluateRecurring(recurring(due, 3, true), prefsWith(nil), testutil.Day(2026, 4, 29))
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, models.NotificationTypeRecurringDue, c.Type)
	})

	t.Run("auto_pay_ignores_channel_toggles", func(t *testing.T) {
		p := prefsWith(func(p *models.NotificationPreferences) { p.EmailRecurring, p.PushRecurring = false, false })
		c, err := EvaluateRecurring(recurring(due, 3, true), p, testutil.Day(2026, 5, 2))
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, models.NotificationTypeRecurringAutoPaid, c.Type)

		c, err = EvaluateRecurring(recurring(due, 3, false), p, testutil.Day(2026, 4, 30))
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("overdue_is_high_priority", func(t *testing.T) {
		c, err := EvaluateRecurring(recurring(due, 3, false), prefsWith(nil), testutil.Day(2026, 5, 4))
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, models.PriorityHigh, c.Priority)
	})

	t.Run("missing_due_date", func(t *testing.T) {
		_, err := EvaluateRecurring(recurring(time.Time{}, 3, false), prefsWith(nil), testutil.Day(2026, 5, 4))
		var ee *EvaluationError
		require.ErrorAs(t, err, &ee)
	})
}

func goal(target, current int64) models.SavingsGoal {
	return models.SavingsGoal{
		Base:          models.Base{ID: "goal-1"},
		UserID:        "user-1",
		Name:          "Holiday",
		TargetAmount:  target,
		CurrentAmount: current,
	}
}

func TestEvaluateGoal(t *testing.T) {
	now := testutil.Day(2026, 6, 1)

	tests := []struct {
		name     string
		goal     models.SavingsGoal
		wantType models.NotificationType
		wantKey  string
	}{
		{"no_milestone_yet", goal(10000, 2000), "", ""},
		{"first_milestone", goal(10000, 2500), models.NotificationTypeSavingsGoalMilestone, "milestone:25"},
		{"highest_crossed_only", goal(10000, 7600), models.NotificationTypeSavingsGoalMilestone, "milestone:75"},
		{"achieved", goal(10000, 10000), models.NotificationTypeSavingsGoalAchieved, "achieved"},
		{"overshoot", goal(10000, 12000), models.NotificationTypeSavingsGoalAchieved, "achieved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := EvaluateGoal(tt.goal, prefsWith(nil), now)
			require.NoError(t, err)
			if tt.wantKey == "" {
				assert.Nil(t, c)
				return
			}
			require.NotNil(t, c)
			assert.Equal(t, tt.wantType, c.Type)
			assert.Equal(t, tt.wantKey, c.PeriodKey)
			assert.Equal(t, tt.wantType == models.NotificationTypeSavingsGoalAchieved, c.MarkGoalAchieved)
		})
	}

	t.Run("already_achieved", func(t *testing.T) {
		g := goal(10000, 10000)
		g.IsAchieved = true
		c, err := EvaluateGoal(g, prefsWith(nil), now)
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("malformed_milestones", func(t *testing.T) {
		p := prefsWith(func(p *models.NotificationPreferences) { p.GoalMilestones = "25,abc" })
		_, err := EvaluateGoal(goal(10000, 5000), p, now)
		var ee *EvaluationError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, SourceSavingsGoal, ee.EntityType)
	})

	t.Run("no_milestones_configured", func(t *testing.T) {
		p := prefsWith(func(p *models.NotificationPreferences) { p.GoalMilestones = "" })
		c, err := EvaluateGoal(goal(10000, 9000), p, now)
		require.NoError(t, err)
		assert.Nil(t, c)
	})
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 0, DaysUntil(time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC), testutil.Day(2026, 1, 1)))
	assert.Equal(t, 1, DaysUntil(time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC), testutil.Day(2026, 1, 2)))
	assert.Equal(t, -2, DaysUntil(testutil.Day(2026, 1, 3), testutil.Day(2026, 1, 1)))
	assert.Equal(t, 31, DaysUntil(testutil.Day(2026, 3, 1), testutil.Day(2026, 4, 1)))
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$0.05", formatCents(5))
	assert.Equal(t, "$1499.99", formatCents(149999))
	assert.Equal(t, "-$3.10", formatCents(-310))
}
