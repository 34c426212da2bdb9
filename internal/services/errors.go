package services

import "errors"

var (
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrNotEditable       = errors.New("not_editable")
	ErrInvalidKind       = errors.New("invalid_kind")
	ErrUnknownClient     = errors.New("unknown_client")
	ErrNotConvertible    = errors.New("not_convertible")
)
