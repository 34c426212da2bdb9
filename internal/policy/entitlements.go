package policy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/bizdesk/auth"
	"github.com/diewo77/bizdesk/gate"
	"github.com/diewo77/bizdesk/httpx"
)

// Entitlements is the application's authorization point: a gate over cached
// database plans with ownership policies on every owned resource type.
type Entitlements struct {
	Gate  *gate.Gate[uint]
	Cache *gate.CachedResolver[uint]
}

// NewEntitlements builds the gate for db, caching plans for ttl.
func NewEntitlements(db *gorm.DB, ttl time.Duration) *Entitlements {
	return NewEntitlementsWithResolver(NewDBPlanResolver(db), ttl)
}

// NewEntitlementsWithResolver is NewEntitlements over any resolver.
func NewEntitlementsWithResolver(resolver gate.PlanResolver[uint], ttl time.Duration) *Entitlements {
	cached := gate.NewCachedResolver[uint](resolver, ttl)
	g := gate.New[uint](cached)
	owner := NewOwnershipPolicy()
	for _, rt := range []string{ResourceClient, ResourceDocument, ResourceReceipt, ResourcePDF} {
		g.Register(rt, owner)
	}
	return &Entitlements{Gate: g, Cache: cached}
}

// Authorize checks the user of ctx. Returns gate.ErrUnauthorized when no
// user is signed in.
func (e *Entitlements) Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return gate.ErrUnauthorized
	}
	return e.Gate.Authorize(ctx, userID, action, resourceType, resource)
}

// Can is Authorize as a bool.
func (e *Entitlements) Can(ctx context.Context, action gate.Action, resourceType string, resource any) bool {
	return e.Authorize(ctx, action, resourceType, resource) == nil
}

// InvalidateUser clears the cached plan of a user. Call it when the user
// changes plan.
func (e *Entitlements) InvalidateUser(userID uint) {
	e.Cache.Invalidate(userID)
}

// Status maps a gate error to an HTTP status.
func Status(err error) int {
	switch {
	case errors.Is(err, gate.ErrNotEntitled), errors.Is(err, gate.ErrNoPlan):
		return http.StatusPaymentRequired
	case errors.Is(err, gate.ErrUnauthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Require returns middleware rejecting users whose plan lacks
// resourceType:action.
func (e *Entitlements) Require(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := e.Authorize(r.Context(), action, resourceType, nil); err != nil {
				if _, ok := auth.UserIDFromContext(r.Context()); !ok {
					httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
					return
				}
				httpx.JSONError(w, Status(err), err.Error(), map[string]string{"permission": resourceType + ":" + string(action)})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
