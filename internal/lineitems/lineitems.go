// Package lineitems maintains the rows of a business document (invoice,
// estimate, work order) and derives the document totals from them.
//
// Every function here is pure: inputs are never mutated and a new slice is
// returned. Monetary values are decimals rounded half-even to two places.
package lineitems

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ItemType classifies a line.
type ItemType string

const (
	TypeService  ItemType = "service"
	TypeProduct  ItemType = "product"
	TypeHours    ItemType = "hours"
	TypeDiscount ItemType = "discount"
	TypeExpenses ItemType = "expenses"
)

// ItemTypes lists the known types in display order.
var ItemTypes = []ItemType{TypeService, TypeProduct, TypeHours, TypeDiscount, TypeExpenses}

// ParseItemType maps s to a known type, falling back to TypeService.
func ParseItemType(s string) ItemType {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ItemTypes {
		if t == known {
			return t
		}
	}
	return TypeService
}

// Field names an editable column of a line.
type Field string

const (
	FieldType        Field = "type"
	FieldDescription Field = "description"
	FieldQuantity    Field = "quantity"
	FieldRate        Field = "rate"
)

// Places is the number of decimal places amounts are rounded to.
const Places = 2

// LineItem is one row of a document. Amount is always
// round(Quantity*Rate, 2) and is never set by callers.
type LineItem struct {
	Type        ItemType        `json:"type"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// NewLineItem builds a row with its amount computed. Negative quantity or
// rate are coerced to zero.
func NewLineItem(t ItemType, description string, quantity, rate decimal.Decimal) LineItem {
	it := LineItem{
		Type:        ParseItemType(string(t)),
		Description: description,
		Quantity:    nonNegative(quantity),
		Rate:        nonNegative(rate),
	}
	it.Amount = amountOf(it.Quantity, it.Rate)
	return it
}

func amountOf(quantity, rate decimal.Decimal) decimal.Decimal {
	return quantity.Mul(rate).RoundBank(Places)
}

func clone(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// UpdateLineItem returns a copy of items with field at index set to value.
// Quantity and rate accept numbers, decimals or numeric strings; anything
// else (or a negative value) becomes zero, and the amount is recomputed.
// An out-of-range index or unknown field returns an unchanged copy.
func UpdateLineItem(items []LineItem, index int, field Field, value any) []LineItem {
	out := clone(items)
	if index < 0 || index >= len(out) {
		return out
	}
	it := out[index]
	switch field {
	case FieldType:
		it.Type = ParseItemType(toString(value))
	case FieldDescription:
		it.Description = toString(value)
	case FieldQuantity:
		it.Quantity = Coerce(value)
		it.Amount = amountOf(it.Quantity, it.Rate)
	case FieldRate:
		it.Rate = Coerce(value)
		it.Amount = amountOf(it.Quantity, it.Rate)
	default:
		return out
	}
	out[index] = it
	return out
}

// AddLineItem appends a zero service row.
func AddLineItem(items []LineItem) []LineItem {
	return append(clone(items), NewLineItem(TypeService, "", decimal.Zero, decimal.Zero))
}

// RemoveLineItem drops the row at index. A document always keeps at least
// one row, so removing the last remaining row is a no-op.
func RemoveLineItem(items []LineItem, index int) []LineItem {
	if len(items) <= 1 || index < 0 || index >= len(items) {
		return clone(items)
	}
	out := make([]LineItem, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...)
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
