package policy

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/diewo77/bizdesk/gate"
	"github.com/diewo77/bizdesk/internal/models"
)

// DBPlanResolver loads a user's plan and its permissions from the database.
type DBPlanResolver struct {
	DB *gorm.DB
}

// NewDBPlanResolver creates a new database-backed plan resolver.
func NewDBPlanResolver(db *gorm.DB) *DBPlanResolver {
	return &DBPlanResolver{DB: db}
}

// Resolve returns nil, nil when the user has no plan or does not exist.
func (r *DBPlanResolver) Resolve(ctx context.Context, userID uint) (gate.Plan, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Preload("Plan.Permissions").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if user.Plan == nil {
		return nil, nil
	}
	perms := make([]gate.Permission, len(user.Plan.Permissions))
	for i, p := range user.Plan.Permissions {
		perms[i] = gate.NewPermission(p.ResourceType, gate.Action(p.Action))
	}
	return gate.NewStaticPlan(user.Plan.Code, perms...), nil
}
