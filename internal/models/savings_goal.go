package models

import "time"

// SavingsGoal is a target amount a user is saving towards.
type SavingsGoal struct {
	Base
	UserID        string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string     `gorm:"not null" json:"name"`
	TargetAmount  int64      `gorm:"type:bigint;not null" json:"target_amount"`
	CurrentAmount int64      `gorm:"type:bigint;not null;default:0" json:"current_amount"`
	TargetDate    *time.Time `json:"target_date,omitempty"`
	IsAchieved    bool       `gorm:"default:false;index" json:"is_achieved"`
	AchievedAt    *time.Time `json:"achieved_at,omitempty"`
}

// Progress returns CurrentAmount as a percentage of TargetAmount.
func (g *SavingsGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	return float64(g.CurrentAmount) / float64(g.TargetAmount) * 100
}
