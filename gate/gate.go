// Package gate answers "may this user do that?" for the application.
//
// A Gate combines two checks: the user's subscription plan must grant the
// resource:action permission, and, when a concrete resource is supplied and
// a Policy is registered for its type, the policy must accept it (typically
// an ownership check). The package has no dependency on domain models; the
// host application provides a PlanResolver.
package gate

import "context"

// Policy defines resource-level rules for a resource type.
// For list/create the resource is nil and policies are not consulted.
type Policy[U any] interface {
	Can(ctx context.Context, user U, action Action, resource any) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc[U any] func(ctx context.Context, user U, action Action, resource any) bool

// Can implements Policy.
func (f PolicyFunc[U]) Can(ctx context.Context, user U, action Action, resource any) bool {
	return f(ctx, user, action, resource)
}

// Gate is the central authorization checkpoint.
type Gate[U comparable] struct {
	resolver PlanResolver[U]
	policies map[string]Policy[U]
}

// New creates a gate resolving plans through resolver.
func New[U comparable](resolver PlanResolver[U]) *Gate[U] {
	return &Gate[U]{
		resolver: resolver,
		policies: make(map[string]Policy[U]),
	}
}

// Register adds a resource policy, replacing any previous one for that type.
// Register is not safe to call concurrently with Authorize; wire policies at startup.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize returns nil when user may perform action on resourceType.
//  1. the user must be non-zero
//  2. the user's plan must grant resourceType:action
//  3. when resource is non-nil and a policy exists, the policy must allow it
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return ErrUnauthorized
	}
	plan, err := g.resolver.Resolve(ctx, user)
	if err != nil || plan == nil {
		return ErrNoPlan
	}
	if !plan.Allows(NewPermission(resourceType, action)) {
		return ErrNotEntitled
	}
	if resource != nil {
		if p, ok := g.policies[resourceType]; ok && !p.Can(ctx, user, action, resource) {
			return ErrUnauthorized
		}
	}
	return nil
}

// Can is Authorize as a bool.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}

// Entitled checks only the plan permission, without any resource policy.
func (g *Gate[U]) Entitled(ctx context.Context, user U, action Action, resourceType string) bool {
	return g.Authorize(ctx, user, action, resourceType, nil) == nil
}
