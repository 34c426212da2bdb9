package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/bizdesk/auth"
	"github.com/diewo77/bizdesk/httpx"
	"github.com/diewo77/bizdesk/internal/models"
	"github.com/diewo77/bizdesk/internal/policy"
	"github.com/diewo77/bizdesk/internal/services"
	"github.com/diewo77/bizdesk/validation"
)

// AccountHandler serves the signed-in user's plan and company settings.
type AccountHandler struct {
	db    *gorm.DB
	ent   *policy.Entitlements
	audit *services.Audit
	log   *zap.Logger
}

func NewAccountHandler(db *gorm.DB, ent *policy.Entitlements, audit *services.Audit, log *zap.Logger) *AccountHandler {
	return &AccountHandler{db: db, ent: ent, audit: audit, log: log}
}

// Me returns the user with their plan and its permissions.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var user models.User
	if err := h.db.WithContext(r.Context()).Preload("Plan.Permissions").First(&user, userID).Error; err != nil {
		failErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AccountHandler) Plans(w http.ResponseWriter, r *http.Request) {
	var plans []models.Plan
	if err := h.db.WithContext(r.Context()).Preload("Permissions").Order("id").Find(&plans).Error; err != nil {
		failErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"plans": plans})
}

// ChangePlan switches the user to the plan {code}. The cached entitlements
// of the user are dropped so the change applies to the next request.
func (h *AccountHandler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req struct {
		Code string `json:"code"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	var plan models.Plan
	err := h.db.WithContext(r.Context()).Where("code = ?", strings.TrimSpace(req.Code)).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		invalid(w, r, validation.Violations{"code": "invalid_choice"})
		return
	}
	if err != nil {
		failErr(w, r, err)
		return
	}
	if err := h.db.WithContext(r.Context()).Model(&models.User{}).Where("id = ?", userID).Update("plan_id", plan.ID).Error; err != nil {
		failErr(w, r, err)
		return
	}
	h.ent.InvalidateUser(userID)
	h.audit.Record(r.Context(), models.AuditLog{UserID: userID, EntityType: "user", EntityID: userID, Action: "plan", Field: "plan", NewValue: plan.Code})
	h.log.Info("plan changed", zap.Uint("user_id", userID), zap.String("plan", plan.Code))
	httpx.JSON(w, http.StatusOK, map[string]any{"user_id": userID, "plan": plan.Code})
}

type companyRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	TaxNumber string `json:"tax_number"`
	Currency  string `json:"currency"`
}

// Company returns the company settings, empty when none were saved.
func (h *AccountHandler) Company(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var settings models.CompanySettings
	err := h.db.WithContext(r.Context()).Where("user_id = ?", userID).First(&settings).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		failErr(w, r, err)
		return
	}
	settings.UserID = userID
	httpx.JSON(w, http.StatusOK, settings)
}

// UpdateCompany creates or replaces the company settings.
func (h *AccountHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req companyRequest
	if err := httpx.Decode(r, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("name", req.Name, v)
	validation.Email("email", req.Email, v)
	if req.Currency != "" && len(req.Currency) != 3 {
		v["currency"] = "invalid_choice"
	}
	if !v.Empty() {
		invalid(w, r, v)
		return
	}

	var settings models.CompanySettings
	err := h.db.WithContext(r.Context()).Where("user_id = ?", userID).First(&settings).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		failErr(w, r, err)
		return
	}
	settings.UserID = userID
	settings.Name = strings.TrimSpace(req.Name)
	settings.Email = req.Email
	settings.Phone = req.Phone
	settings.Address = req.Address
	settings.TaxNumber = req.TaxNumber
	settings.Currency = strings.ToUpper(req.Currency)
	if settings.Currency == "" {
		settings.Currency = "EUR"
	}
	if err := h.db.WithContext(r.Context()).Save(&settings).Error; err != nil {
		failErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}
