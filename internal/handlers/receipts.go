package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/bizdesk/auth"
	"github.com/diewo77/bizdesk/httpx"
	"github.com/diewo77/bizdesk/internal/models"
	"github.com/diewo77/bizdesk/internal/services"
)

// MaxReceiptBytes bounds a receipt upload.
const MaxReceiptBytes = 10 << 20

type ReceiptHandler struct {
	svc *services.ReceiptService
	log *zap.Logger
}

func NewReceiptHandler(svc *services.ReceiptService, log *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{svc: svc, log: log}
}

// Upload stores the multipart "file" field.
func (h *ReceiptHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, MaxReceiptBytes)
	if err := r.ParseMultipartForm(MaxReceiptBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(w, r, http.StatusRequestEntityTooLarge, "file_too_large", nil)
			return
		}
		fail(w, r, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid_form", map[string]string{"file": "required"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	rec, err := h.svc.Store(r.Context(), userID, services.Upload{
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		if !errors.Is(err, services.ErrEmptyUpload) {
			h.log.Error("receipt upload", zap.Uint("user_id", userID), zap.Error(err))
			fail(w, r, http.StatusBadGateway, "upload_failed", nil)
			return
		}
		failErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *ReceiptHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	list, err := h.svc.List(r.Context(), userID)
	if err != nil {
		failErr(w, r, err)
		return
	}
	if list == nil {
		list = []models.Receipt{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"receipts": list})
}
