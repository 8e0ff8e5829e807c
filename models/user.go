package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a registered account. Users are soft-deleted only; entries and
// budgets always reference an existing row.
type User struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	FullName        string         `json:"full_name" gorm:"size:100;not null"`
	Email           string         `json:"email" gorm:"uniqueIndex;size:100;not null"`
	Password        string         `json:"-" gorm:"size:255;not null"`
	ProfileImageURL string         `json:"profile_image_url" gorm:"size:255"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName sets the table name.
func (User) TableName() string {
	return "users"
}
