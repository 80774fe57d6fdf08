package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "budgetbell/internal/errors"
	"budgetbell/internal/models"
)

// recurringExpenseService records payments against recurring expenses.
// Every payment creates an expense transaction and moves NextDueDate forward
// exactly one period.
type recurringExpenseService struct {
	db *gorm.DB
}

// NewRecurringExpenseService creates a new RecurringExpenseServicer.
func NewRecurringExpenseService(db *gorm.DB) RecurringExpenseServicer {
	return &recurringExpenseService{db: db}
}

// RecordPayment records a user-initiated payment for the expense's current due date.
func (s *recurringExpenseService) RecordPayment(userID, expenseID string, paidAt time.Time) (*models.Transaction, *models.RecurringExpense, error) {
	var txn *models.Transaction
	var expense models.RecurringExpense

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrRecurringExpenseNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if expense.LastPaidDate != nil && paidAt.Before(*expense.LastPaidDate) {
			return apperrors.ErrPaymentDateRegresses
		}

		var err error
		txn, err = s.recordPayment(tx, &expense, paidAt)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return txn, &expense, nil
}

// RecordPaymentTx records an automatic payment inside the caller's
// transaction. dueDate must still be the expense's NextDueDate, so a payment
// that raced with another one is rejected instead of skipping a period.
func (s *recurringExpenseService) RecordPaymentTx(tx *gorm.DB, expenseID string, dueDate, paidAt time.Time) (*models.Transaction, error) {
	var expense models.RecurringExpense
	if err := tx.Where("id = ?", expenseID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !expense.NextDueDate.Equal(dueDate) {
		return nil, apperrors.ErrRecurringExpenseStale
	}
	return s.recordPayment(tx, &expense, paidAt)
}

func (s *recurringExpenseService) recordPayment(tx *gorm.DB, expense *models.RecurringExpense, paidAt time.Time) (*models.Transaction, error) {
	if !expense.IsActive {
		return nil, apperrors.ErrRecurringExpenseInactive
	}
	if !expense.Frequency.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "recurring expense has an unknown frequency")
	}

	txn := &models.Transaction{
		UserID:             expense.UserID,
		CategoryID:         expense.CategoryID,
		RecurringExpenseID: &expense.ID,
		Type:               models.TransactionTypeExpense,
		Amount:             expense.Amount,
		Description:        expense.Name,
		Date:               paidAt,
	}
	if err := tx.Create(txn).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	current := expense.NextDueDate
	next := expense.Frequency.Next(current)
	res := tx.Model(&models.RecurringExpense{}).
		Where("id = ? AND next_due_date = ?", expense.ID, current).
		Updates(map[string]interface{}{
			"next_due_date":  next,
			"last_paid_date": paidAt,
		})
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrRecurringExpenseStale
	}

	expense.NextDueDate = next
	expense.LastPaidDate = &paidAt
	return txn, nil
}
