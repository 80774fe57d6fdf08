package notifier

import (
	"context"
	"errors"
	"time"

	"budgetbell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRecorder records a recurring expense payment inside a caller-owned
// transaction. The recurring expense service implements it.
type PaymentRecorder interface {
	RecordPaymentTx(tx *gorm.DB, expenseID string, dueDate, paidAt time.Time) (*models.Transaction, error)
}

// Writer persists a candidate as a notification together with its dedup
// mark and any source-entity bookkeeping, all in one transaction.
type Writer struct {
	db       *gorm.DB
	payments PaymentRecorder
	clock    Clock
}

// NewWriter returns a Writer. payments may be nil when auto-pay is not used.
func NewWriter(db *gorm.DB, payments PaymentRecorder, clock Clock) *Writer {
	if clock == nil {
		clock = SystemClock()
	}
	return &Writer{db: db, payments: payments, clock: clock}
}

// Commit writes the candidate. It returns ErrAlreadyNotified when the mark
// already exists, in which case nothing is written.
func (w *Writer) Commit(ctx context.Context, c *Candidate) (*models.Notification, error) {
	now := w.clock.Now()
	var created *models.Notification

	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mark := &models.NotificationMark{
			UserID:    c.UserID,
			Type:      c.Type,
			SourceID:  c.SourceID,
			PeriodKey: c.PeriodKey,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(mark)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyNotified
		}

		n := &models.Notification{
			UserID:      c.UserID,
			Type:        c.Type,
			Title:       c.Title,
			Message:     c.Message,
			Priority:    c.Priority,
			ScheduledAt: c.ScheduledAt,
		}
		linkSource(n, c)

		if c.AutoPay != nil {
			if w.payments == nil {
				return errors.New("auto-pay requested without a payment recorder")
			}
			txn, err := w.payments.RecordPaymentTx(tx, c.AutoPay.ExpenseID, c.AutoPay.DueDate, now)
			if err != nil {
				return err
			}
			n.TransactionID = &txn.ID
		}

		if err := tx.Create(n).Error; err != nil {
			return err
		}
		if err := tx.Model(mark).Update("notification_id", n.ID).Error; err != nil {
			return err
		}

		switch c.SourceKind {
		case SourceRecurringExpense:
			if err := tx.Model(&models.RecurringExpense{}).Where("id = ?", c.SourceID).
				Update("last_notified_at", now).Error; err != nil {
				return err
			}
		case SourceSavingsGoal:
			if c.MarkGoalAchieved {
				if err := tx.Model(&models.SavingsGoal{}).Where("id = ?", c.SourceID).
					Updates(map[string]interface{}{"is_achieved": true, "achieved_at": now}).Error; err != nil {
					return err
				}
			}
		}

		created = n
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyNotified) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "commit notification", EntityType: c.SourceKind, EntityID: c.SourceID, Err: err}
	}
	return created, nil
}

func linkSource(n *models.Notification, c *Candidate) {
	id := c.SourceID
	switch c.SourceKind {
	case SourceBudget:
		n.BudgetID = &id
	case SourceLoan:
		n.LoanID = &id
	case SourceRecurringExpense:
		n.RecurringExpenseID = &id
	case SourceSavingsGoal:
		n.SavingsGoalID = &id
	}
}
