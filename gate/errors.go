package gate

import "errors"

// Sentinel errors returned by Gate.Authorize.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoPlan       = errors.New("no_plan")
	ErrNotEntitled  = errors.New("not_entitled")
)
