package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/bizdesk/auth"
	"github.com/diewo77/bizdesk/gate"
	"github.com/diewo77/bizdesk/httpx"
	"github.com/diewo77/bizdesk/internal/models"
	"github.com/diewo77/bizdesk/internal/policy"
	"github.com/diewo77/bizdesk/validation"
)

const pageSize = 20

type ClientHandler struct {
	db  *gorm.DB
	ent *policy.Entitlements
}

func NewClientHandler(db *gorm.DB, ent *policy.Entitlements) *ClientHandler {
	return &ClientHandler{db: db, ent: ent}
}

type clientPage struct {
	Clients []models.Client `json:"clients"`
	Query   string          `json:"query,omitempty"`
	Page    int             `json:"page"`
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
}

// List pages through the user's clients, filtered by ?q= on name or company.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	db := h.db.WithContext(r.Context()).Model(&models.Client{}).Where("user_id = ?", userID)
	if query != "" {
		like := "%" + strings.ToLower(query) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(company) LIKE ?", like, like)
	}
	db = db.Session(&gorm.Session{})

	out := clientPage{Query: query, Page: page, Limit: pageSize, Clients: []models.Client{}}
	if err := db.Count(&out.Total).Error; err != nil {
		failErr(w, r, err)
		return
	}
	if err := db.Order("name").Limit(pageSize).Offset((page - 1) * pageSize).Find(&out.Clients).Error; err != nil {
		failErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

type clientRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Company    string `json:"company"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	TaxNumber  string `json:"tax_number"`
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req clientRequest
	if err := httpx.Decode(r, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	client := models.Client{
		UserID:     userID,
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Phone:      req.Phone,
		Company:    req.Company,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		TaxNumber:  req.TaxNumber,
	}

	v := make(validation.Violations)
	validation.Required("name", client.Name, v)
	validation.Email("email", client.Email, v)
	if !v.Empty() {
		invalid(w, r, v)
		return
	}

	if err := h.db.WithContext(r.Context()).Create(&client).Error; err != nil {
		failErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		fail(w, r, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var client models.Client
	if err := h.db.WithContext(r.Context()).First(&client, id).Error; err != nil {
		failErr(w, r, err)
		return
	}
	if err := h.ent.Authorize(r.Context(), gate.ActionView, policy.ResourceClient, &client); err != nil {
		failErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}
