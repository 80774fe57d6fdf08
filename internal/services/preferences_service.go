package services

import (
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "budgetbell/internal/errors"
	"budgetbell/internal/models"
)

// preferencesService handles notification preferences.
type preferencesService struct {
	db *gorm.DB
}

// NewPreferencesService creates a new PreferencesServicer.
func NewPreferencesService(db *gorm.DB) PreferencesServicer {
	return &preferencesService{db: db}
}

// GetPreferences returns the user's stored preferences, or the defaults the
// reminder engine would apply when none are stored.
func (s *preferencesService) GetPreferences(userID string) (*models.NotificationPreferences, error) {
	if err := s.ensureUser(userID); err != nil {
		return nil, err
	}

	var prefs models.NotificationPreferences
	if err := s.db.Where("user_id = ?", userID).First(&prefs).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DefaultPreferences(userID), nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &prefs, nil
}

// UpdatePreferences applies a partial update on top of the current
// preferences and stores the result.
func (s *preferencesService) UpdatePreferences(userID string, update PreferencesUpdate) (*models.NotificationPreferences, error) {
	prefs, err := s.GetPreferences(userID)
	if err != nil {
		return nil, err
	}

	applyBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	applyBool(&prefs.EmailBudget, update.EmailBudget)
	applyBool(&prefs.PushBudget, update.PushBudget)
	applyBool(&prefs.EmailLoan, update.EmailLoan)
	applyBool(&prefs.PushLoan, update.PushLoan)
	applyBool(&prefs.EmailRecurring, update.EmailRecurring)
	applyBool(&prefs.PushRecurring, update.PushRecurring)
	applyBool(&prefs.EmailGoal, update.EmailGoal)
	applyBool(&prefs.PushGoal, update.PushGoal)
	if update.BudgetThreshold != nil {
		prefs.BudgetThreshold = *update.BudgetThreshold
	}
	if update.ReminderDaysBefore != nil {
		prefs.ReminderDaysBefore = *update.ReminderDaysBefore
	}
	if update.GoalMilestones != nil {
		prefs.GoalMilestones = *update.GoalMilestones
	}

	if err := prefs.Validate(); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidPreferences, err.Error())
	}
	// Store milestones in canonical form.
	milestones, _ := prefs.Milestones()
	prefs.GoalMilestones = formatMilestones(milestones)

	// Select("*") so false toggles are written rather than skipped as zero values.
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Select("*").Create(prefs).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetPreferences(userID)
}

func (s *preferencesService) ensureUser(userID string) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func formatMilestones(ms []int) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = strconv.Itoa(m)
	}
	return strings.Join(parts, ",")
}
