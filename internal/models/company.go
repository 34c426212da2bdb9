package models

import (
	"time"

	"gorm.io/gorm"
)

// CompanySettings is the account owner's business identity, printed in the
// header of every document.
type CompanySettings struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	Name      string `gorm:"size:255;not null" json:"name"`
	Email     string `gorm:"size:255" json:"email,omitempty"`
	Phone     string `gorm:"size:50" json:"phone,omitempty"`
	Address   string `gorm:"size:500" json:"address,omitempty"`
	TaxNumber string `gorm:"size:32" json:"tax_number,omitempty"`
	Currency  string `gorm:"size:3;default:'EUR'" json:"currency"`
}

// GetUserID implements the Ownable interface.
func (c *CompanySettings) GetUserID() uint {
	return c.UserID
}
