// Package server assembles the HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/bizdesk/auth"
	"github.com/diewo77/bizdesk/gate"
	"github.com/diewo77/bizdesk/httpx"
	"github.com/diewo77/bizdesk/internal/db"
	"github.com/diewo77/bizdesk/internal/handlers"
	"github.com/diewo77/bizdesk/internal/middleware"
	"github.com/diewo77/bizdesk/internal/policy"
	"github.com/diewo77/bizdesk/internal/services"
	"github.com/diewo77/bizdesk/internal/storage"
	"github.com/diewo77/bizdesk/internal/voice"
)

// Deps are the collaborators of the API.
type Deps struct {
	DB           *gorm.DB
	Sessions     *auth.Sessions
	Entitlements *policy.Entitlements
	Matcher      *voice.Matcher
	Store        storage.BlobStore
	Extractor    services.ReceiptExtractor // nil uses services.NoopExtractor
	Logger       *zap.Logger
	DefaultLang  string
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	mux := http.NewServeMux()

	audit := services.NewAudit(d.DB, log)
	docs := services.NewDocumentService(d.DB, audit, log)
	receipts := services.NewReceiptService(d.DB, d.Store, d.Extractor, audit, log)

	ah := handlers.NewAuthHandler(d.DB, d.Sessions, audit, log)
	acc := handlers.NewAccountHandler(d.DB, d.Entitlements, audit, log)
	ch := handlers.NewClientHandler(d.DB, d.Entitlements)
	dh := handlers.NewDocumentHandler(d.DB, docs, d.Entitlements, log)
	rh := handlers.NewReceiptHandler(receipts, log)
	vh := handlers.NewVoiceHandler(d.Matcher, log)

	// requireAuth only checks the session.
	requireAuth := func(h http.HandlerFunc) http.Handler {
		return d.Sessions.RequireAuth(h)
	}
	// protect checks the session, then the plan permission.
	protect := func(resourceType string, action gate.Action, h http.HandlerFunc) http.Handler {
		return d.Sessions.RequireAuth(d.Entitlements.Require(resourceType, action)(h))
	}

	// Health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx, d.DB); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth
	mux.HandleFunc("POST /signup", ah.Signup)
	mux.HandleFunc("POST /login", ah.Login)
	mux.HandleFunc("POST /logout", ah.Logout)

	// Account
	mux.Handle("GET /api/me", requireAuth(acc.Me))
	mux.Handle("GET /api/plans", requireAuth(acc.Plans))
	mux.Handle("POST /api/account/plan", requireAuth(acc.ChangePlan))
	mux.Handle("GET /api/company", requireAuth(acc.Company))
	mux.Handle("PUT /api/company", requireAuth(acc.UpdateCompany))
	mux.Handle("GET /api/stats", protect(policy.ResourceDocument, gate.ActionList, dh.Stats))

	// Calculators
	mux.Handle("POST /api/totals", protect(policy.ResourceTotals, gate.ActionUse, handlers.Totals))
	mux.Handle("POST /api/voice/match", protect(policy.ResourceVoice, gate.ActionUse, vh.Match))

	// Clients
	mux.Handle("GET /api/clients", protect(policy.ResourceClient, gate.ActionList, ch.List))
	mux.Handle("POST /api/clients", protect(policy.ResourceClient, gate.ActionCreate, ch.Create))
	mux.Handle("GET /api/clients/{id}", protect(policy.ResourceClient, gate.ActionView, ch.View))

	// Documents
	mux.Handle("GET /api/documents", protect(policy.ResourceDocument, gate.ActionList, dh.List))
	mux.Handle("POST /api/documents", protect(policy.ResourceDocument, gate.ActionCreate, dh.Create))
	mux.Handle("GET /api/documents/{id}", protect(policy.ResourceDocument, gate.ActionView, dh.View))
	mux.Handle("POST /api/documents/{id}/items", protect(policy.ResourceDocument, gate.ActionUpdate, dh.AddItem))
	mux.Handle("PATCH /api/documents/{id}/items/{index}", protect(policy.ResourceDocument, gate.ActionUpdate, dh.UpdateItem))
	mux.Handle("POST /api/documents/{id}/items/{index}/delete", protect(policy.ResourceDocument, gate.ActionUpdate, dh.RemoveItem))
	mux.Handle("POST /api/documents/{id}/status", protect(policy.ResourceDocument, gate.ActionUpdate, dh.SetStatus))
	mux.Handle("POST /api/documents/{id}/convert", protect(policy.ResourceDocument, gate.ActionUpdate, dh.Convert))
	mux.Handle("GET /api/documents/{id}/pdf", protect(policy.ResourcePDF, gate.ActionExport, dh.PDF))

	// Receipts
	mux.Handle("GET /api/receipts", protect(policy.ResourceReceipt, gate.ActionList, rh.List))
	mux.Handle("POST /api/receipts", protect(policy.ResourceReceipt, gate.ActionCreate, rh.Upload))

	handler := d.Sessions.Middleware(middleware.Lang(d.DefaultLang)(mux))
	return withRecover(log, withLogging(log, handler))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func withLogging(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

func withRecover(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic", zap.Any("panic", rec), zap.String("path", r.URL.Path), zap.Stack("stack"))
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
