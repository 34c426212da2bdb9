// Package services holds the document workflows that span several tables:
// numbering, lifecycles, line edits and conversions.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/bizdesk/internal/lineitems"
	"github.com/diewo77/bizdesk/internal/models"
)

// DocumentInput carries the fields of a new document.
type DocumentInput struct {
	Kind      models.DocumentKind
	ClientID  uint
	IssueDate time.Time
	DueDate   *time.Time
	Currency  string
	Discount  decimal.Decimal
	TaxRate   decimal.Decimal
	Notes     string
	Items     []lineitems.LineItem
}

type DocumentService struct {
	db    *gorm.DB
	audit *Audit
	log   *zap.Logger
	now   func() time.Time
}

func NewDocumentService(db *gorm.DB, audit *Audit, log *zap.Logger) *DocumentService {
	if log == nil {
		log = zap.NewNop()
	}
	if audit == nil {
		audit = NewAudit(db, log)
	}
	return &DocumentService{db: db, audit: audit, log: log, now: time.Now}
}

// Create numbers and stores a new draft. A document always has at least one
// line, so an empty item list gets a blank service row.
func (s *DocumentService) Create(ctx context.Context, userID uint, in DocumentInput) (*models.Document, error) {
	if !in.Kind.Valid() {
		return nil, ErrInvalidKind
	}
	issue := in.IssueDate
	if issue.IsZero() {
		issue = s.now()
	}
	currency := in.Currency
	if currency == "" {
		currency = "EUR"
	}
	items := in.Items
	if len(items) == 0 {
		items = lineitems.AddLineItem(nil)
	}

	doc := &models.Document{
		PublicID:  uuid.NewString(),
		UserID:    userID,
		Kind:      in.Kind,
		Status:    models.StatusDraft,
		ClientID:  in.ClientID,
		IssueDate: issue,
		DueDate:   in.DueDate,
		Currency:  currency,
		Discount:  in.Discount,
		TaxRate:   in.TaxRate,
		Notes:     in.Notes,
	}
	doc.SetItems(items)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.Where("id = ? AND user_id = ?", in.ClientID, userID).First(&client).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownClient
			}
			return err
		}
		number, err := nextNumber(tx, userID, in.Kind, issue.Year())
		if err != nil {
			return err
		}
		doc.Number = number
		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		doc.Client = &client
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Event(ctx, userID, "document", doc.ID, "create")
	s.log.Info("document created", zap.Uint("user_id", userID), zap.String("number", doc.Number))
	return doc, nil
}

// Get loads a document with its client and ordered items. Ownership is the
// caller's concern.
func (s *DocumentService) Get(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&doc, id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns the user's documents, newest first. An empty kind lists all.
func (s *DocumentService) List(ctx context.Context, userID uint, kind models.DocumentKind) ([]models.Document, error) {
	q := s.db.WithContext(ctx).Preload("Client").Where("user_id = ?", userID)
	if kind != "" {
		if !kind.Valid() {
			return nil, ErrInvalidKind
		}
		q = q.Where("kind = ?", kind)
	}
	var docs []models.Document
	if err := q.Order("issue_date DESC, id DESC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// AddItem appends a row to a draft.
func (s *DocumentService) AddItem(ctx context.Context, doc *models.Document, item lineitems.LineItem) error {
	items := lineitems.AddLineItem(doc.LineItems())
	last := len(items) - 1
	items = lineitems.UpdateLineItem(items, last, lineitems.FieldType, string(item.Type))
	items = lineitems.UpdateLineItem(items, last, lineitems.FieldDescription, item.Description)
	items = lineitems.UpdateLineItem(items, last, lineitems.FieldQuantity, item.Quantity)
	items = lineitems.UpdateLineItem(items, last, lineitems.FieldRate, item.Rate)
	return s.replaceItems(ctx, doc, items)
}

// UpdateItem sets one field of a row of a draft.
func (s *DocumentService) UpdateItem(ctx context.Context, doc *models.Document, index int, field lineitems.Field, value any) error {
	return s.replaceItems(ctx, doc, lineitems.UpdateLineItem(doc.LineItems(), index, field, value))
}

// RemoveItem drops a row of a draft. The last remaining row is kept.
func (s *DocumentService) RemoveItem(ctx context.Context, doc *models.Document, index int) error {
	return s.replaceItems(ctx, doc, lineitems.RemoveLineItem(doc.LineItems(), index))
}

func (s *DocumentService) replaceItems(ctx context.Context, doc *models.Document, items []lineitems.LineItem) error {
	if !doc.CanEdit() {
		return ErrNotEditable
	}
	next := *doc
	next.SetItems(items)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.DocumentItem{}).Error; err != nil {
			return err
		}
		if len(next.Items) > 0 {
			if err := tx.Create(&next.Items).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Document{ID: doc.ID}).Updates(map[string]any{
			"subtotal": next.Subtotal,
			"tax":      next.Tax,
			"total":    next.Total,
		}).Error
	})
	if err != nil {
		return err
	}
	doc.Items = next.Items
	doc.Subtotal, doc.Tax, doc.Total = next.Subtotal, next.Tax, next.Total
	return nil
}

// SetStatus moves a document along its lifecycle.
func (s *DocumentService) SetStatus(ctx context.Context, doc *models.Document, status models.DocumentStatus) error {
	if convertOnly[status] {
		return fmt.Errorf("%w: %s is set by converting the document", ErrInvalidTransition, status)
	}
	if !CanSetStatus(doc.Kind, doc.Status, status) {
		return fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, doc.Kind, doc.Status, status)
	}
	old := doc.Status
	if err := s.db.WithContext(ctx).Model(&models.Document{ID: doc.ID}).Update("status", status).Error; err != nil {
		return err
	}
	doc.Status = status
	s.audit.Record(ctx, models.AuditLog{
		UserID:     doc.UserID,
		EntityType: "document",
		EntityID:   doc.ID,
		Action:     "status",
		Field:      "status",
		OldValue:   string(old),
		NewValue:   string(status),
	})
	return nil
}

// Convert turns an accepted estimate into a new draft invoice carrying the
// same client, amounts and items. The estimate becomes converted.
func (s *DocumentService) Convert(ctx context.Context, estimate *models.Document) (*models.Document, error) {
	if estimate.Kind != models.KindEstimate || !CanTransition(estimate.Kind, estimate.Status, models.StatusConverted) {
		return nil, ErrNotConvertible
	}
	invoice := &models.Document{
		PublicID:        uuid.NewString(),
		UserID:          estimate.UserID,
		Kind:            models.KindInvoice,
		Status:          models.StatusDraft,
		ClientID:        estimate.ClientID,
		IssueDate:       s.now(),
		Currency:        estimate.Currency,
		Discount:        estimate.Discount,
		TaxRate:         estimate.TaxRate,
		Notes:           estimate.Notes,
		ConvertedFromID: &estimate.ID,
	}
	invoice.SetItems(estimate.LineItems())

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := nextNumber(tx, invoice.UserID, models.KindInvoice, invoice.IssueDate.Year())
		if err != nil {
			return err
		}
		invoice.Number = number
		if err := tx.Create(invoice).Error; err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		return tx.Model(&models.Document{ID: estimate.ID}).Update("status", models.StatusConverted).Error
	})
	if err != nil {
		return nil, err
	}
	estimate.Status = models.StatusConverted
	s.audit.Record(ctx, models.AuditLog{
		UserID:     estimate.UserID,
		EntityType: "document",
		EntityID:   estimate.ID,
		Action:     "convert",
		NewValue:   invoice.Number,
	})
	return invoice, nil
}

// Revenue is the sum of the user's paid invoice totals.
func (s *DocumentService) Revenue(ctx context.Context, userID uint) (decimal.Decimal, error) {
	var invoices []models.Document
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND status = ?", userID, models.KindInvoice, models.StatusPaid).
		Preload("Items").
		Find(&invoices).Error
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, inv := range invoices {
		total = total.Add(inv.ComputeTotals().Total)
	}
	return total, nil
}
