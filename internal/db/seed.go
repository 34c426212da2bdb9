package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/diewo77/bizdesk/internal/models"
)

type planSeed struct {
	Code        string
	Name        string
	Permissions [][2]string
}

// plans are the subscription tiers. Voice navigation and PDF export are
// reserved to the pro plan.
var plans = []planSeed{
	{
		Code: models.PlanFree,
		Name: "Free",
		Permissions: [][2]string{
			{"client", "*"},
			{"document", "*"},
			{"totals", "use"},
			{"receipt", "create"},
			{"receipt", "list"},
		},
	},
	{
		Code:        models.PlanPro,
		Name:        "Pro",
		Permissions: [][2]string{{"*", "*"}},
	},
}

// Seed creates the reference plans. It is idempotent: existing plans keep
// their id and gain any missing permission.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, ps := range plans {
			var plan models.Plan
			err := tx.Where("code = ?", ps.Code).First(&plan).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				plan = models.Plan{Code: ps.Code, Name: ps.Name}
				err = tx.Create(&plan).Error
			}
			if err != nil {
				return fmt.Errorf("plan %s: %w", ps.Code, err)
			}
			for _, p := range ps.Permissions {
				perm := models.PlanPermission{PlanID: plan.ID, ResourceType: p[0], Action: p[1]}
				if err := tx.Where(&perm).FirstOrCreate(&perm).Error; err != nil {
					return fmt.Errorf("plan %s permission %s:%s: %w", ps.Code, p[0], p[1], err)
				}
			}
		}
		return nil
	})
}
