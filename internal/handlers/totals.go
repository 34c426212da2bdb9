package handlers

import (
	"net/http"

	"github.com/diewo77/bizdesk/httpx"
	"github.com/diewo77/bizdesk/internal/lineitems"
	"github.com/diewo77/bizdesk/validation"
)

type totalsRequest struct {
	Items    []lineitems.Input `json:"items"`
	Discount any               `json:"discount"`
	Tax      any               `json:"tax"`
}

type totalsResponse struct {
	Items []lineitems.LineItem `json:"items"`
	lineitems.Totals
}

// Totals is a stateless calculator: it recomputes line amounts and totals
// of the posted rows. Negative or non-numeric values are rejected.
func Totals(w http.ResponseWriter, r *http.Request) {
	var req totalsRequest
	if err := httpx.Decode(r, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := make(validation.Violations)
	validation.Lines(req.Items, v)
	discount, ok := lineitems.ParseStrict(req.Discount)
	if !ok {
		v["discount"] = "invalid_amount"
	}
	tax, ok := lineitems.ParseStrict(req.Tax)
	if !ok {
		v["tax"] = "invalid_amount"
	}
	if !v.Empty() {
		invalid(w, r, v)
		return
	}

	items := lineitems.FromInputs(req.Items)
	httpx.JSON(w, http.StatusOK, totalsResponse{
		Items:  items,
		Totals: lineitems.ComputeTotals(items, discount, tax),
	})
}
