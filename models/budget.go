package models

import (
	"time"

	"gorm.io/gorm"
)

// MonthlyBudget is the spending limit for one user and one calendar month.
// Month is 1..12, matching time.Month. Amount 0 means the budget is disabled.
//
// Notified records that the threshold alert for this month has been sent;
// it is true only while month-to-date expenses are at or above Amount and
// flips back to false when the user raises the budget above current spend.
type MonthlyBudget struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_user_year_month"`
	Year      int            `json:"year" gorm:"not null;uniqueIndex:idx_user_year_month"`
	Month     int            `json:"month" gorm:"not null;uniqueIndex:idx_user_year_month"`
	Amount    float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Notified  bool           `json:"notified" gorm:"default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName sets the table name.
func (MonthlyBudget) TableName() string {
	return "monthly_budgets"
}
