package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an authenticated user in the system.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string         `gorm:"size:255" json:"name,omitempty"`
	Password  string         `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Lang      string         `gorm:"size:8" json:"lang,omitempty"`
	// PlanID links the user to a subscription plan.
	// A nil value means the user has no active plan.
	PlanID *uint `gorm:"index" json:"plan_id,omitempty"`
	Plan   *Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}
