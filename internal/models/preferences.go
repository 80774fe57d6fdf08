package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Defaults applied when a user has no preferences row.
const (
	DefaultBudgetThreshold    = 80
	DefaultReminderDaysBefore = 3
	DefaultGoalMilestones     = "25,50,75"
)

// NotificationPreferences holds a user's per channel × category toggles and
// the thresholds the reminder engine reads. The engine never writes it.
type NotificationPreferences struct {
	Base
	UserID string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	EmailBudget    bool `json:"email_budget"`
	PushBudget     bool `json:"push_budget"`
	EmailLoan      bool `json:"email_loan"`
	PushLoan       bool `json:"push_loan"`
	EmailRecurring bool `json:"email_recurring"`
	PushRecurring  bool `json:"push_recurring"`
	EmailGoal      bool `json:"email_goal"`
	PushGoal       bool `json:"push_goal"`

	// BudgetThreshold is the spend percentage (1-100) that triggers a budget alert.
	BudgetThreshold int `gorm:"not null" json:"budget_threshold"`
	// ReminderDaysBefore is the lead time (0-30 days) for loan payment reminders.
	ReminderDaysBefore int `gorm:"not null" json:"reminder_days_before"`
	// GoalMilestones is a comma-separated list of savings progress percentages.
	GoalMilestones string `gorm:"size:64;not null" json:"goal_milestones"`
}

// TableName keeps the table name singular-per-user rather than "notification_preferences".
func (NotificationPreferences) TableName() string {
	return "notification_preferences"
}

// DefaultPreferences returns the preferences assumed for a user without a row.
// Boolean defaults are set here rather than through gorm tags because gorm
// skips zero values on create when a column default exists.
func DefaultPreferences(userID string) *NotificationPreferences {
	return &NotificationPreferences{
		UserID:             userID,
		EmailBudget:        true,
		PushBudget:         true,
		EmailLoan:          true,
		PushLoan:           true,
		EmailRecurring:     true,
		PushRecurring:      true,
		EmailGoal:          true,
		PushGoal:           true,
		BudgetThreshold:    DefaultBudgetThreshold,
		ReminderDaysBefore: DefaultReminderDaysBefore,
		GoalMilestones:     DefaultGoalMilestones,
	}
}

// Bounds accepted for the numeric preferences.
const (
	MinBudgetThreshold    = 1
	MaxBudgetThreshold    = 100
	MaxReminderDaysBefore = 30
)

// BudgetEnabled reports whether budget alerts reach at least one channel.
func (p *NotificationPreferences) BudgetEnabled() bool { return p.EmailBudget || p.PushBudget }

// LoanEnabled reports whether loan reminders reach at least one channel.
func (p *NotificationPreferences) LoanEnabled() bool { return p.EmailLoan || p.PushLoan }

// RecurringEnabled reports whether recurring expense reminders reach at least one channel.
func (p *NotificationPreferences) RecurringEnabled() bool { return p.EmailRecurring || p.PushRecurring }

// GoalEnabled reports whether savings goal updates reach at least one channel.
func (p *NotificationPreferences) GoalEnabled() bool { return p.EmailGoal || p.PushGoal }

// ValidateBudgetThreshold checks BudgetThreshold is a usable percentage.
func (p *NotificationPreferences) ValidateBudgetThreshold() error {
	if p.BudgetThreshold < MinBudgetThreshold || p.BudgetThreshold > MaxBudgetThreshold {
		return fmt.Errorf("budget threshold %d outside %d-%d", p.BudgetThreshold, MinBudgetThreshold, MaxBudgetThreshold)
	}
	return nil
}

// ValidateReminderDays checks ReminderDaysBefore is a usable lead time.
func (p *NotificationPreferences) ValidateReminderDays() error {
	if p.ReminderDaysBefore < 0 || p.ReminderDaysBefore > MaxReminderDaysBefore {
		return fmt.Errorf("reminder days %d outside 0-%d", p.ReminderDaysBefore, MaxReminderDaysBefore)
	}
	return nil
}

// Milestones parses GoalMilestones into an ascending, de-duplicated list.
func (p *NotificationPreferences) Milestones() ([]int, error) {
	return ParseMilestones(p.GoalMilestones)
}

// Validate checks every numeric preference.
func (p *NotificationPreferences) Validate() error {
	if err := p.ValidateBudgetThreshold(); err != nil {
		return err
	}
	if err := p.ValidateReminderDays(); err != nil {
		return err
	}
	if _, err := p.Milestones(); err != nil {
		return err
	}
	return nil
}

// ParseMilestones parses a comma-separated list of percentages in 1-99.
// An empty string means no milestones.
func ParseMilestones(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	seen := make(map[int]bool)
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid milestone %q", part)
		}
		if n < 1 || n > 99 {
			return nil, fmt.Errorf("milestone %d outside 1-99", n)
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out, nil
}
