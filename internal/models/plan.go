package models

import (
	"time"

	"gorm.io/gorm"
)

// Plan codes seeded at startup.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// Plan is a subscription tier granting a set of permissions.
type Plan struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"deleted_at,omitempty"`
	Code        string           `gorm:"uniqueIndex;size:50;not null" json:"code"`
	Name        string           `gorm:"size:100;not null" json:"name"`
	Permissions []PlanPermission `gorm:"constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
}

// PlanPermission is a single "resource:action" grant of a plan. Either part
// may be "*".
type PlanPermission struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	PlanID       uint   `gorm:"index;not null" json:"plan_id"`
	ResourceType string `gorm:"size:50;not null" json:"resource_type"`
	Action       string `gorm:"size:50;not null" json:"action"`
}

// Code returns the permission in "resource:action" format for matching.
func (p PlanPermission) Code() string {
	return p.ResourceType + ":" + p.Action
}
