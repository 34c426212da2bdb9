package services

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/bizdesk/internal/models"
)

// Audit persists security and document events. A failed write is logged
// and never fails the caller.
type Audit struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAudit(db *gorm.DB, log *zap.Logger) *Audit {
	if log == nil {
		log = zap.NewNop()
	}
	return &Audit{db: db, log: log}
}

// Record stores entry.
func (a *Audit) Record(ctx context.Context, entry models.AuditLog) {
	if err := a.db.WithContext(ctx).Create(&entry).Error; err != nil {
		a.log.Warn("audit write failed",
			zap.String("action", entry.Action),
			zap.Uint("user_id", entry.UserID),
			zap.Error(err))
	}
}

// Event is Record for events without a field change.
func (a *Audit) Event(ctx context.Context, userID uint, entityType string, entityID uint, action string) {
	a.Record(ctx, models.AuditLog{UserID: userID, EntityType: entityType, EntityID: entityID, Action: action})
}
