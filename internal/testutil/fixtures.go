package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"budgetbell/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestPreferences stores preferences for a user. The mutate func, if
// given, is applied to the defaults before insert.
func CreateTestPreferences(t *testing.T, db *gorm.DB, userID string, mutate func(*models.NotificationPreferences)) *models.NotificationPreferences {
	t.Helper()

	prefs := models.DefaultPreferences(userID)
	if mutate != nil {
		mutate(prefs)
	}
	// Select("*") so false toggles are written instead of skipped as zero values.
	if err := db.Select("*").Create(prefs).Error; err != nil {
		t.Fatalf("failed to create test preferences: %v", err)
	}
	return prefs
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestExpense records an expense transaction (amount in cents) on date.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, categoryID string, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:     userID,
		CategoryID: &categoryID,
		Type:       models.TransactionTypeExpense,
		Amount:     amount,
		Date:       date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates a budget with the given monthly limit (in cents) for month (YYYY-MM).
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID string, amount int64, month string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Name:       fmt.Sprintf("Test Budget %d", nextID()),
		Amount:     amount,
		Month:      month,
		IsActive:   true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestLoan creates an active loan starting on start.
func CreateTestLoan(t *testing.T, db *gorm.DB, userID string, start time.Time) *models.Loan {
	t.Helper()

	loan := &models.Loan{
		UserID:         userID,
		Name:           fmt.Sprintf("Test Loan %d", nextID()),
		InitialAmount:  1200000,
		Balance:        1200000,
		MonthlyPayment: 100000,
		InterestRate:   5.5,
		StartDate:      start,
		IsActive:       true,
	}
	if err := db.Create(loan).Error; err != nil {
		t.Fatalf("failed to create test loan: %v", err)
	}
	return loan
}

// CreateTestLoanPayment records a payment against a loan.
func CreateTestLoanPayment(t *testing.T, db *gorm.DB, loanID string, amount int64, paidAt time.Time) *models.LoanPayment {
	t.Helper()

	payment := &models.LoanPayment{LoanID: loanID, Amount: amount, PaidAt: paidAt}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("failed to create test loan payment: %v", err)
	}
	return payment
}

// CreateTestRecurringExpense creates an active monthly recurring expense.
func CreateTestRecurringExpense(t *testing.T, db *gorm.DB, userID string, nextDue time.Time, reminderDays int) *models.RecurringExpense {
	t.Helper()

	expense := &models.RecurringExpense{
		UserID:       userID,
		Name:         fmt.Sprintf("Test Bill %d", nextID()),
		Amount:       4999,
		Frequency:    models.FrequencyMonthly,
		NextDueDate:  nextDue,
		IsActive:     true,
		ReminderDays: reminderDays,
	}
	// Select("*") so a zero ReminderDays is stored instead of the column default.
	if err := db.Select("*").Create(expense).Error; err != nil {
		t.Fatalf("failed to create test recurring expense: %v", err)
	}
	return expense
}

// CreateTestSavingsGoal creates an in-progress savings goal.
func CreateTestSavingsGoal(t *testing.T, db *gorm.DB, userID string, target, current int64) *models.SavingsGoal {
	t.Helper()

	goal := &models.SavingsGoal{
		UserID:        userID,
		Name:          fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount:  target,
		CurrentAmount: current,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test savings goal: %v", err)
	}
	return goal
}

// CreateTestNotification creates an unread notification of the given type.
func CreateTestNotification(t *testing.T, db *gorm.DB, userID string, notificationType models.NotificationType) *models.Notification {
	t.Helper()

	n := &models.Notification{
		UserID:   userID,
		Type:     notificationType,
		Title:    fmt.Sprintf("Test Notification %d", nextID()),
		Message:  "test",
		Priority: models.PriorityNormal,
	}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("failed to create test notification: %v", err)
	}
	return n
}
