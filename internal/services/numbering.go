package services

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/bizdesk/internal/models"
)

// FormatNumber renders a document number such as INV-2026-0042.
func FormatNumber(kind models.DocumentKind, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", kind.NumberPrefix(), year, seq)
}

// nextNumber allocates the next number for the user, kind and year. It must
// run inside a transaction; the sequence row is locked for update on
// databases that support it.
func nextNumber(tx *gorm.DB, userID uint, kind models.DocumentKind, year int) (string, error) {
	seq := models.DocumentSequence{UserID: userID, Kind: kind, Year: year}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
		return "", fmt.Errorf("init sequence: %w", err)
	}
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND kind = ? AND year = ?", userID, kind, year).
		First(&seq).Error
	if err != nil {
		return "", fmt.Errorf("load sequence: %w", err)
	}
	seq.Last++
	if err := tx.Model(&seq).Update("last", seq.Last).Error; err != nil {
		return "", fmt.Errorf("bump sequence: %w", err)
	}
	return FormatNumber(kind, year, seq.Last), nil
}
