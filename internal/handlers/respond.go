// Package handlers exposes the JSON API.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/diewo77/bizdesk/gate"
	"github.com/diewo77/bizdesk/httpx"
	"github.com/diewo77/bizdesk/i18n"
	"github.com/diewo77/bizdesk/internal/middleware"
	"github.com/diewo77/bizdesk/internal/policy"
	"github.com/diewo77/bizdesk/internal/services"
	"github.com/diewo77/bizdesk/validation"
)

// fail writes the error envelope with a message in the request language.
func fail(w http.ResponseWriter, r *http.Request, status int, code string, details any) {
	httpx.JSONErrorMessage(w, status, code, i18n.T(middleware.LangFrom(r), code), details)
}

func invalid(w http.ResponseWriter, r *http.Request, v validation.Violations) {
	fail(w, r, http.StatusUnprocessableEntity, "validation_failed", v)
}

// failErr maps service and gate errors to statuses.
func failErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		fail(w, r, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrInvalidTransition):
		fail(w, r, http.StatusConflict, "invalid_transition", nil)
	case errors.Is(err, services.ErrNotEditable):
		fail(w, r, http.StatusConflict, "not_editable", nil)
	case errors.Is(err, services.ErrNotConvertible):
		fail(w, r, http.StatusConflict, "not_convertible", nil)
	case errors.Is(err, services.ErrInvalidKind), errors.Is(err, services.ErrUnknownClient), errors.Is(err, services.ErrEmptyUpload):
		fail(w, r, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, gate.ErrUnauthorized), errors.Is(err, gate.ErrNotEntitled), errors.Is(err, gate.ErrNoPlan):
		fail(w, r, policy.Status(err), err.Error(), nil)
	default:
		fail(w, r, http.StatusInternalServerError, "internal_error", nil)
	}
}

// pathID reads a positive numeric path value.
func pathID(r *http.Request, name string) (uint, bool) {
	n, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
