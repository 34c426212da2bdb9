// Package policy wires the gate to the database: plans come from the users
// table and resources are guarded by ownership.
package policy

import (
	"context"

	"github.com/diewo77/bizdesk/gate"
)

// Resource types checked against plan permissions.
const (
	ResourceClient   = "client"
	ResourceDocument = "document"
	ResourceReceipt  = "receipt"
	ResourceVoice    = "voice"
	ResourcePDF      = "pdf"
	ResourceTotals   = "totals"
)

// Ownable is an interface for resources that have an owner.
type Ownable interface {
	GetUserID() uint
}

// OwnershipPolicy allows access only to the owner of a resource.
type OwnershipPolicy struct{}

// NewOwnershipPolicy creates a new ownership policy.
func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can checks if the user owns the resource. Resources that do not
// implement Ownable are denied.
func (p *OwnershipPolicy) Can(_ context.Context, userID uint, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetUserID() == userID
}
