// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"budgetbell/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("notification_type", validateNotificationType)
		_ = v.RegisterValidation("milestone_list", validateMilestoneList)
	}
}

func validateNotificationType(fl validator.FieldLevel) bool {
	return models.NotificationType(fl.Field().String()).Valid()
}

// validateMilestoneList accepts a comma-separated list of percentages in 1-99.
// An empty list is valid and disables milestone notifications.
func validateMilestoneList(fl validator.FieldLevel) bool {
	_, err := models.ParseMilestones(fl.Field().String())
	return err == nil
}
