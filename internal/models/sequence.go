package models

// DocumentSequence is the last number issued per user, kind and year.
type DocumentSequence struct {
	ID     uint         `gorm:"primaryKey"`
	UserID uint         `gorm:"not null;uniqueIndex:idx_sequences_key"`
	Kind   DocumentKind `gorm:"size:20;not null;uniqueIndex:idx_sequences_key"`
	Year   int          `gorm:"not null;uniqueIndex:idx_sequences_key"`
	Last   int          `gorm:"not null;default:0"`
}

// All returns every model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Plan{}, &PlanPermission{}, &User{}, &CompanySettings{}, &Client{},
		&Document{}, &DocumentItem{}, &DocumentSequence{}, &Receipt{}, &AuditLog{},
	}
}
