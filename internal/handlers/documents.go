package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/bizdesk/auth"
	"github.com/diewo77/bizdesk/gate"
	"github.com/diewo77/bizdesk/httpx"
	"github.com/diewo77/bizdesk/internal/lineitems"
	"github.com/diewo77/bizdesk/internal/middleware"
	"github.com/diewo77/bizdesk/internal/models"
	"github.com/diewo77/bizdesk/internal/pdf"
	"github.com/diewo77/bizdesk/internal/policy"
	"github.com/diewo77/bizdesk/internal/services"
	"github.com/diewo77/bizdesk/validation"
)

const (
	dateLayout = "2006-01-02"
	// tax rates are stored as numeric(6,4)
	taxRatePlaces = 4
)

type DocumentHandler struct {
	db  *gorm.DB
	svc *services.DocumentService
	ent *policy.Entitlements
	log *zap.Logger
}

func NewDocumentHandler(db *gorm.DB, svc *services.DocumentService, ent *policy.Entitlements, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{db: db, svc: svc, ent: ent, log: log}
}

// load fetches the {id} document and checks the caller may act on it.
func (h *DocumentHandler) load(w http.ResponseWriter, r *http.Request, action gate.Action) (*models.Document, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		fail(w, r, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	doc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		failErr(w, r, err)
		return nil, false
	}
	if err := h.ent.Authorize(r.Context(), action, policy.ResourceDocument, doc); err != nil {
		failErr(w, r, err)
		return nil, false
	}
	return doc, true
}

func kinds() []string {
	out := make([]string, len(models.DocumentKinds))
	for i, k := range models.DocumentKinds {
		out[i] = string(k)
	}
	return out
}

// List returns the user's documents, optionally filtered by ?kind=.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	kind := models.DocumentKind(r.URL.Query().Get("kind"))
	docs, err := h.svc.List(r.Context(), userID, kind)
	if err != nil {
		failErr(w, r, err)
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": docs})
}

type documentRequest struct {
	Kind      string            `json:"kind"`
	ClientID  uint              `json:"client_id"`
	IssueDate string            `json:"issue_date"`
	DueDate   string            `json:"due_date"`
	Currency  string            `json:"currency"`
	Discount  any               `json:"discount"`
	TaxRate   any               `json:"tax_rate"`
	Notes     string            `json:"notes"`
	Items     []lineitems.Input `json:"items"`
}

// input validates req into a service input.
func (req documentRequest) input(v validation.Violations) services.DocumentInput {
	in := services.DocumentInput{
		Kind:     models.DocumentKind(req.Kind),
		ClientID: req.ClientID,
		Currency: req.Currency,
		Notes:    req.Notes,
	}
	validation.OneOf("kind", req.Kind, kinds(), v)
	if req.ClientID == 0 {
		v["client_id"] = "required"
	}
	if req.Currency != "" && len(req.Currency) != 3 {
		v["currency"] = "invalid_choice"
	}
	if req.IssueDate != "" {
		t, err := time.Parse(dateLayout, req.IssueDate)
		if err != nil {
			v["issue_date"] = "invalid_date"
		}
		in.IssueDate = t
	}
	if req.DueDate != "" {
		t, err := time.Parse(dateLayout, req.DueDate)
		if err != nil {
			v["due_date"] = "invalid_date"
		} else {
			in.DueDate = &t
		}
	}
	var ok bool
	if in.Discount, ok = lineitems.ParseAmount(req.Discount, lineitems.Places); !ok {
		v["discount"] = "invalid_amount"
	}
	if in.TaxRate, ok = lineitems.ParseAmount(req.TaxRate, taxRatePlaces); !ok {
		v["tax_rate"] = "invalid_amount"
	} else {
		validation.Range("tax_rate", in.TaxRate, decimal.Zero, decimal.NewFromInt(1), v)
	}
	validation.Lines(req.Items, v)
	in.Items = lineitems.FromInputs(req.Items)
	return in
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var req documentRequest
	if err := httpx.Decode(r, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	in := req.input(v)
	if !v.Empty() {
		invalid(w, r, v)
		return
	}
	doc, err := h.svc.Create(r.Context(), userID, in)
	if err != nil {
		failErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) View(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r, gate.ActionView)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

// AddItem appends the posted row.
func (h *DocumentHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var in lineitems.Input
	if err := httpx.Decode(r, &in); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := make(validation.Violations)
	validation.Lines([]lineitems.Input{in}, v)
	if !v.Empty() {
		invalid(w, r, v)
		return
	}
	doc, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	if err := h.svc.AddItem(r.Context(), doc, lineitems.FromInputs([]lineitems.Input{in})[0]); err != nil {
		failErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

type itemUpdate struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// UpdateItem sets one field of row {index}.
func (h *DocumentHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		fail(w, r, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req itemUpdate
	if err := httpx.Decode(r, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	field := lineitems.Field(req.Field)
	v := make(validation.Violations)
	validation.OneOf("field", req.Field, []string{
		string(lineitems.FieldType), string(lineitems.FieldDescription),
		string(lineitems.FieldQuantity), string(lineitems.FieldRate),
	}, v)
	if field == lineitems.FieldQuantity || field == lineitems.FieldRate {
		if _, ok := lineitems.ParseAmount(req.Value, lineitems.MaxPlaces); !ok {
			v["value"] = "invalid_" + req.Field
		}
	}
	if !v.Empty() {
		invalid(w, r, v)
		return
	}
	doc, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	if index >= len(doc.Items) {
		fail(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	if err := h.svc.UpdateItem(r.Context(), doc, index, field, req.Value); err != nil {
		failErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

// RemoveItem drops row {index}. The last row of a document stays.
func (h *DocumentHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		fail(w, r, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	doc, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	if index >= len(doc.Items) {
		fail(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	if err := h.svc.RemoveItem(r.Context(), doc, index); err != nil {
		failErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	doc, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	if err := h.svc.SetStatus(r.Context(), doc, models.DocumentStatus(req.Status)); err != nil {
		failErr(w, r, err)
		return
	}
	h.log.Info("document status", zap.String("number", doc.Number), zap.String("status", req.Status))
	httpx.JSON(w, http.StatusOK, doc)
}

// Convert turns an accepted estimate into a draft invoice.
func (h *DocumentHandler) Convert(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	if err := h.ent.Authorize(r.Context(), gate.ActionCreate, policy.ResourceDocument, nil); err != nil {
		failErr(w, r, err)
		return
	}
	invoice, err := h.svc.Convert(r.Context(), doc)
	if err != nil {
		failErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

// PDF streams the rendered document in the request language.
func (h *DocumentHandler) PDF(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r, gate.ActionView)
	if !ok {
		return
	}
	var company *models.CompanySettings
	var cs models.CompanySettings
	if err := h.db.WithContext(r.Context()).Where("user_id = ?", doc.UserID).First(&cs).Error; err == nil {
		company = &cs
	}
	out, err := pdf.Render(pdf.DocumentData{Document: doc, Company: company}, middleware.LangFrom(r))
	if err != nil {
		h.log.Error("render pdf", zap.Uint("document_id", doc.ID), zap.Error(err))
		failErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.FileName(doc)))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// Stats summarizes the user's activity.
func (h *DocumentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	ctx := r.Context()

	var clientCount int64
	if err := h.db.WithContext(ctx).Model(&models.Client{}).Where("user_id = ?", userID).Count(&clientCount).Error; err != nil {
		failErr(w, r, err)
		return
	}
	type kindCount struct {
		Kind  models.DocumentKind
		Count int64
	}
	var rows []kindCount
	err := h.db.WithContext(ctx).Model(&models.Document{}).
		Select("kind, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		failErr(w, r, err)
		return
	}
	counts := make(map[models.DocumentKind]int64, len(models.DocumentKinds))
	for _, k := range models.DocumentKinds {
		counts[k] = 0
	}
	for _, row := range rows {
		counts[row.Kind] = row.Count
	}
	revenue, err := h.svc.Revenue(ctx, userID)
	if err != nil {
		failErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"clients":   clientCount,
		"documents": counts,
		"revenue":   revenue,
	})
}
