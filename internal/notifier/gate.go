package notifier

import (
	"context"

	"budgetbell/internal/models"

	"gorm.io/gorm"
)

// Gate answers whether a candidate's occurrence has already been notified.
// It is a fast path only; the unique index on notification_marks is what
// actually prevents duplicates when two runs race.
type Gate struct {
	db *gorm.DB
}

// NewGate returns a Gate reading the notification_marks ledger.
func NewGate(db *gorm.DB) *Gate {
	return &Gate{db: db}
}

// ShouldEmit reports true when no mark exists for the candidate's key.
func (g *Gate) ShouldEmit(ctx context.Context, c *Candidate) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&models.NotificationMark{}).
		Where("user_id = ? AND type = ? AND source_id = ? AND period_key = ?",
			c.UserID, c.Type, c.SourceID, c.PeriodKey).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, &PersistenceError{Op: "check mark", EntityType: c.SourceKind, EntityID: c.SourceID, Err: err}
	}
	return count == 0, nil
}
