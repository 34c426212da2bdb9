package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/bizdesk/internal/models"
	"github.com/diewo77/bizdesk/internal/storage"
)

var ErrEmptyUpload = errors.New("empty_upload")

// Extraction holds the fields read from a receipt. Zero values mean the
// field was not found.
type Extraction struct {
	Vendor   string
	Total    decimal.NullDecimal
	Currency string
	IssuedOn *time.Time
}

// ReceiptExtractor reads accounting fields from a stored receipt.
type ReceiptExtractor interface {
	Extract(ctx context.Context, r *models.Receipt, content io.Reader) (Extraction, error)
}

// NoopExtractor finds nothing.
type NoopExtractor struct{}

func (NoopExtractor) Extract(context.Context, *models.Receipt, io.Reader) (Extraction, error) {
	return Extraction{}, nil
}

// Upload describes a received file.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type ReceiptService struct {
	db        *gorm.DB
	store     storage.BlobStore
	extractor ReceiptExtractor
	audit     *Audit
	log       *zap.Logger
}

func NewReceiptService(db *gorm.DB, store storage.BlobStore, extractor ReceiptExtractor, audit *Audit, log *zap.Logger) *ReceiptService {
	if log == nil {
		log = zap.NewNop()
	}
	if extractor == nil {
		extractor = NoopExtractor{}
	}
	if audit == nil {
		audit = NewAudit(db, log)
	}
	return &ReceiptService{db: db, store: store, extractor: extractor, audit: audit, log: log}
}

// Store saves the upload to the blob store, records it and runs extraction.
// Extraction failures mark the receipt failed but do not fail the upload.
func (s *ReceiptService) Store(ctx context.Context, userID uint, up Upload) (*models.Receipt, error) {
	if up.Body == nil || up.Size == 0 {
		return nil, ErrEmptyUpload
	}
	rec := &models.Receipt{
		UserID:   userID,
		BlobKey:  storage.ReceiptKey(userID, up.FileName),
		FileName: up.FileName,
		MimeType: up.ContentType,
		Size:     up.Size,
		Status:   models.ReceiptPending,
	}
	if err := s.store.Put(ctx, rec.BlobKey, up.Body, up.ContentType); err != nil {
		return nil, fmt.Errorf("store receipt: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		if delErr := s.store.Delete(ctx, rec.BlobKey); delErr != nil {
			s.log.Warn("orphan receipt blob", zap.String("key", rec.BlobKey), zap.Error(delErr))
		}
		return nil, fmt.Errorf("record receipt: %w", err)
	}
	s.audit.Event(ctx, userID, "receipt", rec.ID, "upload")
	s.extract(ctx, rec)
	return rec, nil
}

func (s *ReceiptService) extract(ctx context.Context, rec *models.Receipt) {
	body, err := s.store.Get(ctx, rec.BlobKey)
	if err != nil {
		s.log.Warn("receipt read failed", zap.String("key", rec.BlobKey), zap.Error(err))
		return
	}
	defer body.Close()

	ex, err := s.extractor.Extract(ctx, rec, body)
	updates := map[string]any{}
	switch {
	case err != nil:
		s.log.Warn("receipt extraction failed", zap.Uint("receipt_id", rec.ID), zap.Error(err))
		rec.Status = models.ReceiptFailed
		updates["status"] = rec.Status
	case ex.Vendor != "" || ex.Total.Valid || ex.Currency != "" || ex.IssuedOn != nil:
		rec.Status = models.ReceiptExtracted
		rec.Vendor, rec.Total, rec.Currency, rec.IssuedOn = ex.Vendor, ex.Total, ex.Currency, ex.IssuedOn
		updates["status"] = rec.Status
		updates["vendor"] = rec.Vendor
		updates["total"] = rec.Total
		updates["currency"] = rec.Currency
		updates["issued_on"] = rec.IssuedOn
	default:
		return
	}
	if err := s.db.WithContext(ctx).Model(&models.Receipt{ID: rec.ID}).Updates(updates).Error; err != nil {
		s.log.Warn("receipt update failed", zap.Uint("receipt_id", rec.ID), zap.Error(err))
	}
}

// List returns the user's receipts, newest first.
func (s *ReceiptService) List(ctx context.Context, userID uint) ([]models.Receipt, error) {
	var out []models.Receipt
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&out).Error
	return out, err
}
