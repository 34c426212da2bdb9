package lineitems

import (
	"errors"
	"fmt"
)

// Errors reported by ValidateInputs for rows the permissive engine would
// silently coerce to zero.
var (
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidRate     = errors.New("invalid_rate")
)

// RowError ties a validation error to a row index.
type RowError struct {
	Index int
	Err   error
}

func (e *RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Index, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// Input is a row as received from a form or an API payload, before
// coercion. Quantity and Rate may hold numbers, json.Number or strings.
type Input struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Quantity    any    `json:"quantity"`
	Rate        any    `json:"rate"`
}

// FromInputs builds line items through the same coercion UpdateLineItem applies.
func FromInputs(in []Input) []LineItem {
	items := make([]LineItem, 0, len(in))
	for _, raw := range in {
		items = append(items, NewLineItem(ParseItemType(raw.Type), raw.Description, Coerce(raw.Quantity), Coerce(raw.Rate)))
	}
	return items
}

// ValidateInputs is the strict counterpart of FromInputs: it returns a
// joined error of *RowError for every quantity or rate that is not a number
// in [0, MaxValue) with at most MaxPlaces decimals. Blank values are
// accepted as zero.
func ValidateInputs(in []Input) error {
	var errs []error
	for i, raw := range in {
		if _, ok := ParseAmount(raw.Quantity, MaxPlaces); !ok {
			errs = append(errs, &RowError{Index: i, Err: ErrInvalidQuantity})
		}
		if _, ok := ParseAmount(raw.Rate, MaxPlaces); !ok {
			errs = append(errs, &RowError{Index: i, Err: ErrInvalidRate})
		}
	}
	return errors.Join(errs...)
}
