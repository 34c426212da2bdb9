package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReceiptStatus tracks extraction progress of an uploaded receipt.
type ReceiptStatus string

const (
	ReceiptPending   ReceiptStatus = "pending"
	ReceiptExtracted ReceiptStatus = "extracted"
	ReceiptFailed    ReceiptStatus = "failed"
)

// Receipt is an uploaded accounting document (expense receipt, supplier bill).
type Receipt struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID uint `gorm:"index;not null" json:"user_id"`

	BlobKey  string `gorm:"size:255;uniqueIndex;not null" json:"blob_key"`
	FileName string `gorm:"size:255" json:"file_name"`
	MimeType string `gorm:"size:100" json:"mime_type"`
	Size     int64  `json:"size"`

	Status   ReceiptStatus       `gorm:"size:20;not null;default:'pending'" json:"status"`
	Vendor   string              `gorm:"size:255" json:"vendor,omitempty"`
	Total    decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"total"`
	Currency string              `gorm:"size:3" json:"currency,omitempty"`
	IssuedOn *time.Time          `json:"issued_on,omitempty"`
}

// GetUserID implements the Ownable interface.
func (r *Receipt) GetUserID() uint {
	return r.UserID
}
