package notifier

import (
	"context"
	"time"

	"budgetbell/internal/models"

	"gorm.io/gorm"
)

// lookupChunk bounds the size of IN lists.
const lookupChunk = 500

// Store loads the run snapshot with a fixed number of batched queries,
// independent of how many entities exist.
type Store struct {
	db *gorm.DB
}

// NewStore returns a Store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

type budgetSpend struct {
	BudgetID string
	Spent    int64
}

type loanPaymentCount struct {
	LoanID   string
	Payments int
}

// Load reads every entity the engine evaluates at now. Only entities owned
// by active users are returned.
func (s *Store) Load(ctx context.Context, now time.Time) (*Snapshot, error) {
	db := s.db.WithContext(ctx)
	activeUsers := func() *gorm.DB {
		return db.Model(&models.User{}).Select("id").Where("is_active = ?", true)
	}

	snap := &Snapshot{
		Users:       make(map[string]*models.User),
		Preferences: make(map[string]*models.NotificationPreferences),
	}

	// Budgets for the current month and their spend.
	month := models.MonthOf(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	var budgets []models.Budget
	if err := db.Where("month = ? AND is_active = ? AND user_id IN (?)", month, true, activeUsers()).
		Order("id").Find(&budgets).Error; err != nil {
		return nil, err
	}
	var spends []budgetSpend
	if err := db.Table("budgets").
		Select("budgets.id AS budget_id, COALESCE(SUM(transactions.amount), 0) AS spent").
		Joins("JOIN transactions ON transactions.user_id = budgets.user_id"+
			" AND transactions.category_id = budgets.category_id"+
			" AND transactions.type = ? AND transactions.date >= ? AND transactions.date < ?"+
			" AND transactions.deleted_at IS NULL",
			models.TransactionTypeExpense, monthStart, nextMonth).
		Where("budgets.month = ? AND budgets.is_active = ? AND budgets.deleted_at IS NULL", month, true).
		Group("budgets.id").
		Scan(&spends).Error; err != nil {
		return nil, err
	}
	spentByBudget := make(map[string]int64, len(spends))
	for _, sp := range spends {
		spentByBudget[sp.BudgetID] = sp.Spent
	}
	for _, b := range budgets {
		snap.Budgets = append(snap.Budgets, BudgetItem{Budget: b, Spent: spentByBudget[b.ID]})
	}

	// Loans with an outstanding balance and how many payments they have.
	var loans []models.Loan
	if err := db.Where("is_active = ? AND balance > 0 AND user_id IN (?)", true, activeUsers()).
		Order("id").Find(&loans).Error; err != nil {
		return nil, err
	}
	var counts []loanPaymentCount
	if len(loans) > 0 {
		if err := db.Model(&models.LoanPayment{}).
			Select("loan_id, COUNT(*) AS payments").
			Where("loan_id IN (?)", db.Model(&models.Loan{}).Select("id").
				Where("is_active = ? AND balance > 0", true)).
			Group("loan_id").
			Scan(&counts).Error; err != nil {
			return nil, err
		}
	}
	paid := make(map[string]int, len(counts))
	for _, c := range counts {
		paid[c.LoanID] = c.Payments
	}
	for _, l := range loans {
		snap.Loans = append(snap.Loans, LoanItem{Loan: l, PaymentsMade: paid[l.ID]})
	}

	if err := db.Where("is_active = ? AND user_id IN (?)", true, activeUsers()).
		Order("id").Find(&snap.Recurring).Error; err != nil {
		return nil, err
	}
	if err := db.Where("is_achieved = ? AND user_id IN (?)", false, activeUsers()).
		Order("id").Find(&snap.Goals).Error; err != nil {
		return nil, err
	}

	userIDs := snap.userIDs()
	for _, ids := range chunk(userIDs, lookupChunk) {
		var users []models.User
		if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, err
		}
		for i := range users {
			snap.Users[users[i].ID] = &users[i]
		}

		var prefs []models.NotificationPreferences
		if err := db.Where("user_id IN ?", ids).Find(&prefs).Error; err != nil {
			return nil, err
		}
		for i := range prefs {
			snap.Preferences[prefs[i].UserID] = &prefs[i]
		}
	}

	return snap, nil
}

func (s *Snapshot) userIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, b := range s.Budgets {
		add(b.Budget.UserID)
	}
	for _, l := range s.Loans {
		add(l.Loan.UserID)
	}
	for _, r := range s.Recurring {
		add(r.UserID)
	}
	for _, g := range s.Goals {
		add(g.UserID)
	}
	return ids
}

func chunk(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
