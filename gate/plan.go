package gate

import "context"

// Plan is a subscription tier with a set of permissions.
type Plan interface {
	Code() string
	Allows(permission Permission) bool
	Permissions() []Permission
}

// PlanResolver resolves a user to their current plan.
// A nil plan with a nil error means the user has no active subscription.
type PlanResolver[U any] interface {
	Resolve(ctx context.Context, user U) (Plan, error)
}

// StaticPlan is an in-memory Plan.
type StaticPlan struct {
	code        string
	permissions []Permission
}

// NewStaticPlan creates a plan with the given permissions.
func NewStaticPlan(code string, permissions ...Permission) *StaticPlan {
	return &StaticPlan{code: code, permissions: permissions}
}

func (p *StaticPlan) Code() string { return p.code }

// Permissions returns a copy of the plan's permissions.
func (p *StaticPlan) Permissions() []Permission {
	out := make([]Permission, len(p.permissions))
	copy(out, p.permissions)
	return out
}

// Allows reports whether any of the plan's permissions covers requested.
func (p *StaticPlan) Allows(requested Permission) bool {
	for _, perm := range p.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}

// StaticResolver is an in-memory resolver, mostly for tests.
type StaticResolver[U comparable] struct {
	plans map[U]Plan
}

// NewStaticResolver creates an empty resolver.
func NewStaticResolver[U comparable]() *StaticResolver[U] {
	return &StaticResolver[U]{plans: make(map[U]Plan)}
}

// Set assigns a plan to a user.
func (r *StaticResolver[U]) Set(user U, plan Plan) {
	r.plans[user] = plan
}

// Resolve returns the plan for user, or nil.
func (r *StaticResolver[U]) Resolve(_ context.Context, user U) (Plan, error) {
	if plan, ok := r.plans[user]; ok {
		return plan, nil
	}
	return nil, nil
}
