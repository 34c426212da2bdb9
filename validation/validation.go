package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/diewo77/bizdesk/internal/lineitems"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func Email(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		v[field] = "invalid_email"
	}
}

func OneOf(field, value string, allowed []string, v Violations) {
	if !slices.Contains(allowed, value) {
		v[field] = "invalid_choice"
	}
}

func NonNegative(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v[field] = "must_not_negative"
	}
}

func Range(field string, val, minVal, maxVal decimal.Decimal, v Violations) {
	if val.LessThan(minVal) || val.GreaterThan(maxVal) {
		v[field] = "out_of_range"
	}
}

// Lines records the row errors of lineitems.ValidateInputs under keys such
// as "items[2].quantity".
func Lines(inputs []lineitems.Input, v Violations) {
	err := lineitems.ValidateInputs(inputs)
	if err == nil {
		return
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		v["items"] = err.Error()
		return
	}
	for _, e := range joined.Unwrap() {
		var row *lineitems.RowError
		if !errors.As(e, &row) {
			continue
		}
		field := "rate"
		if errors.Is(row.Err, lineitems.ErrInvalidQuantity) {
			field = "quantity"
		}
		v[fmt.Sprintf("items[%d].%s", row.Index, field)] = row.Err.Error()
	}
}
