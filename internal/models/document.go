package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/bizdesk/internal/lineitems"
)

// DocumentKind distinguishes the three business documents sharing one table.
type DocumentKind string

const (
	KindInvoice   DocumentKind = "invoice"
	KindEstimate  DocumentKind = "estimate"
	KindWorkOrder DocumentKind = "work_order"
)

// DocumentKinds lists the valid kinds.
var DocumentKinds = []DocumentKind{KindInvoice, KindEstimate, KindWorkOrder}

// Valid reports whether k is a known kind.
func (k DocumentKind) Valid() bool {
	switch k {
	case KindInvoice, KindEstimate, KindWorkOrder:
		return true
	}
	return false
}

// NumberPrefix is the prefix of document numbers of kind k (INV, EST, WO).
func (k DocumentKind) NumberPrefix() string {
	switch k {
	case KindEstimate:
		return "EST"
	case KindWorkOrder:
		return "WO"
	default:
		return "INV"
	}
}

// DocumentStatus is the lifecycle state of a document. The allowed values
// depend on the kind.
type DocumentStatus string

const (
	StatusDraft      DocumentStatus = "draft"
	StatusSent       DocumentStatus = "sent"
	StatusPaid       DocumentStatus = "paid"
	StatusOverdue    DocumentStatus = "overdue"
	StatusCancelled  DocumentStatus = "cancelled"
	StatusAccepted   DocumentStatus = "accepted"
	StatusRejected   DocumentStatus = "rejected"
	StatusConverted  DocumentStatus = "converted"
	StatusScheduled  DocumentStatus = "scheduled"
	StatusInProgress DocumentStatus = "in_progress"
	StatusCompleted  DocumentStatus = "completed"
)

// Document is an invoice, estimate or work order.
// Implements the Ownable interface for ownership-based authorization.
type Document struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// PublicID is exposed in shareable links instead of the numeric ID.
	PublicID string `gorm:"size:36;uniqueIndex;not null" json:"public_id"`

	UserID uint `gorm:"index;not null;uniqueIndex:idx_documents_user_number" json:"user_id"`

	Kind   DocumentKind   `gorm:"size:20;index;not null" json:"kind"`
	Number string         `gorm:"size:50;not null;uniqueIndex:idx_documents_user_number" json:"number"`
	Status DocumentStatus `gorm:"size:20;not null;default:'draft'" json:"status"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	IssueDate time.Time  `gorm:"not null" json:"issue_date"`
	DueDate   *time.Time `json:"due_date,omitempty"`

	Currency string          `gorm:"size:3;not null;default:'EUR'" json:"currency"`
	Discount decimal.Decimal `gorm:"type:decimal(24,2);not null;default:0" json:"discount"`
	TaxRate  decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0" json:"tax_rate"`

	// Denormalized totals, refreshed on every item change.
	Subtotal decimal.Decimal `gorm:"type:decimal(24,2);not null;default:0" json:"subtotal"`
	Tax      decimal.Decimal `gorm:"type:decimal(24,2);not null;default:0" json:"tax"`
	Total    decimal.Decimal `gorm:"type:decimal(24,2);not null;default:0" json:"total"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	// ConvertedFromID links an invoice to the estimate it was created from.
	ConvertedFromID *uint `gorm:"index" json:"converted_from_id,omitempty"`

	Items []DocumentItem `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"items"`
}

// GetUserID implements the Ownable interface for authorization.
func (d *Document) GetUserID() uint {
	return d.UserID
}

// CanEdit returns true if the items and amounts may still change.
func (d *Document) CanEdit() bool {
	return d.Status == StatusDraft
}

// LineItems converts the stored rows, ordered by position, into engine rows.
func (d *Document) LineItems() []lineitems.LineItem {
	out := make([]lineitems.LineItem, len(d.Items))
	for i, it := range d.Items {
		out[i] = lineitems.NewLineItem(it.Type, it.Description, it.Quantity, it.Rate)
	}
	return out
}

// ComputeTotals derives totals from the items, discount and tax rate.
func (d *Document) ComputeTotals() lineitems.Totals {
	return lineitems.ComputeTaxedTotals(d.LineItems(), d.Discount, d.TaxRate)
}

// SetItems replaces the rows of d and refreshes the denormalized totals.
func (d *Document) SetItems(items []lineitems.LineItem) {
	d.Items = make([]DocumentItem, len(items))
	for i, it := range items {
		d.Items[i] = DocumentItem{
			DocumentID:  d.ID,
			Position:    i,
			Type:        it.Type,
			Description: it.Description,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Amount:      it.Amount,
		}
	}
	d.RefreshTotals()
}

// RefreshTotals recomputes Subtotal, Tax and Total from the items.
func (d *Document) RefreshTotals() {
	t := d.ComputeTotals()
	d.Subtotal, d.Tax, d.Total = t.Subtotal, t.Tax, t.Total
}

// DocumentItem is a stored line of a document.
type DocumentItem struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	DocumentID uint `gorm:"index;not null" json:"document_id"`
	Position   int  `gorm:"not null;default:0" json:"position"`

	Type        lineitems.ItemType `gorm:"size:20;not null;default:'service'" json:"type"`
	Description string             `gorm:"size:500" json:"description"`
	Quantity    decimal.Decimal    `gorm:"type:decimal(18,6);not null" json:"quantity"`
	Rate        decimal.Decimal    `gorm:"type:decimal(18,6);not null" json:"rate"`
	Amount      decimal.Decimal    `gorm:"type:decimal(24,2);not null" json:"amount"`
}
