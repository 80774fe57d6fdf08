package models

// User represents the user model in the database
type User struct {
	Base
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`

	Preferences      *NotificationPreferences `gorm:"foreignKey:UserID" json:"preferences,omitempty"`
	Budgets          []Budget                 `gorm:"foreignKey:UserID" json:"budgets,omitempty"`
	Loans            []Loan                   `gorm:"foreignKey:UserID" json:"loans,omitempty"`
	RecurringExpense []RecurringExpense       `gorm:"foreignKey:UserID" json:"recurring_expenses,omitempty"`
	SavingsGoals     []SavingsGoal            `gorm:"foreignKey:UserID" json:"savings_goals,omitempty"`
}
