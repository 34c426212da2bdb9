package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/bizdesk/auth"
	"github.com/diewo77/bizdesk/internal/db"
	"github.com/diewo77/bizdesk/internal/policy"
	"github.com/diewo77/bizdesk/internal/storage"
	"github.com/diewo77/bizdesk/internal/voice"
)

type testApp struct {
	t       *testing.T
	handler http.Handler
	db      *gorm.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()
	d, err := db.Connect(ctx, db.Options{
		Driver:  "sqlite",
		DSN:     fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		Seed:    true,
		Retries: 1,
	})
	require.NoError(t, err)
	sessions, err := auth.NewSessions("0123456789abcdef-test")
	require.NoError(t, err)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	h := New(Deps{
		DB:           d,
		Sessions:     sessions,
		Entitlements: policy.NewEntitlements(d, time.Minute),
		Matcher:      voice.NewMatcher(voice.DefaultTable()),
		Store:        store,
		Logger:       zap.NewNop(),
		DefaultLang:  "en",
	})
	return &testApp{t: t, handler: h, db: d}
}

// do sends a JSON request with the given session cookie.
func (a *testApp) do(method, path, body string, session *http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if session != nil {
		req.AddCookie(session)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) signup(email string) *http.Cookie {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/signup", `{"email":"`+email+`","password":"correct horse"}`, nil)
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	return sessionCookie(a.t, rr)
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func assertAmount(t *testing.T, want string, got any) {
	t.Helper()
	d, err := decimal.NewFromString(fmt.Sprint(got))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString(want).Equal(d), "want %s got %v", want, got)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	rr := app.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = app.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode(t, rr)["status"])
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)

	rr := app.do(http.MethodGet, "/api/documents", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	session := app.signup("alice@example.com")
	rr = app.do(http.MethodGet, "/api/me", "", session)
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode(t, rr)
	assert.Equal(t, "alice@example.com", me["email"])
	assert.NotContains(t, me, "password")
	plan := me["plan"].(map[string]any)
	assert.Equal(t, "free", plan["code"])

	rr = app.do(http.MethodPost, "/signup", `{"email":"alice@example.com","password":"another one"}`, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "email_taken", decode(t, rr)["error"])

	rr = app.do(http.MethodPost, "/signup", `{"email":"nope","password":"short"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	details := decode(t, rr)["details"].(map[string]any)
	assert.Equal(t, "invalid_email", details["email"])
	assert.Equal(t, "too_short", details["password"])

	rr = app.do(http.MethodPost, "/login", `{"email":"alice@example.com","password":"wrong password"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid_credentials", decode(t, rr)["error"])

	rr = app.do(http.MethodPost, "/login", `{"email":"Alice@Example.com","password":"correct horse"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	session = sessionCookie(t, rr)

	rr = app.do(http.MethodPost, "/logout", "", session)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, -1, sessionCookie(t, rr).MaxAge)

	var events []string
	require.NoError(t, app.db.Table("audit_logs").Order("id").Pluck("action", &events).Error)
	assert.Equal(t, []string{"signup", "login_failed", "login", "logout"}, events)
}

func TestTotals(t *testing.T) {
	app := newTestApp(t)
	session := app.signup("calc@example.com")

	rr := app.do(http.MethodPost, "/api/totals", `{"items":[{"quantity":2,"rate":10},{"quantity":"1","rate":"5"}],"discount":0,"tax":0}`, session)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	out := decode(t, rr)
	assertAmount(t, "25", out["subtotal"])
	assertAmount(t, "25", out["total"])
	items := out["items"].([]any)
	require.Len(t, items, 2)
	assertAmount(t, "20", items[0].(map[string]any)["amount"])

	rr = app.do(http.MethodPost, "/api/totals", `{"items":[{"quantity":-1,"rate":10}],"discount":"x"}`, session)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	out = decode(t, rr)
	assert.Equal(t, "validation_failed", out["error"])
	details := out["details"].(map[string]any)
	assert.Equal(t, "invalid_quantity", details["items[0].quantity"])
	assert.Equal(t, "invalid_amount", details["discount"])

	rr = app.do(http.MethodPost, "/api/totals", `{"items":[{"quantity":"1e2000000000","rate":1},{"quantity":1,"rate":1e-2000000000}]}`, session)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	details = decode(t, rr)["details"].(map[string]any)
	assert.Equal(t, "invalid_quantity", details["items[0].quantity"])
	assert.Equal(t, "invalid_rate", details["items[1].rate"])

	rr = app.do(http.MethodPost, "/api/totals", `{not json`, session)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVoice_RequiresProPlan(t *testing.T) {
	app := newTestApp(t)
	session := app.signup("voice@example.com")

	rr := app.do(http.MethodPost, "/api/voice/match", `{"text":"open invoices","locale":"en-US"}`, session)
	assert.Equal(t, http.StatusPaymentRequired, rr.Code)
	assert.Equal(t, "not_entitled", decode(t, rr)["error"])

	rr = app.do(http.MethodPost, "/api/account/plan", `{"code":"pro"}`, session)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = app.do(http.MethodPost, "/api/voice/match", `{"text":"open invoices","locale":"en-US"}`, session)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	out := decode(t, rr)
	assert.Equal(t, "invoices", out["action"])
	assert.Equal(t, "Opening invoices", out["response"])
	assert.Equal(t, "exact", out["kind"])

	rr = app.do(http.MethodPost, "/api/voice/match", `{"text":"facturas","locale":"es"}`, session)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Abriendo facturas", decode(t, rr)["response"])

	rr = app.do(http.MethodPost, "/api/voice/match", `{"text":"facturas","locale":"es-MX"}`, session)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Abriendo facturas", decode(t, rr)["response"])

	rr = app.do(http.MethodPost, "/api/voice/match", `{"text":"xyzzy plugh","locale":"es"}`, session)
	require.Equal(t, http.StatusNotFound, rr.Code)
	out = decode(t, rr)
	assert.Equal(t, "no_match", out["error"])
	assert.Contains(t, out["message"], "Lo siento")

	rr = app.do(http.MethodPost, "/api/voice/match", `{"text":"  "}`, session)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = app.do(http.MethodPost, "/api/account/plan", `{"code":"platinum"}`, session)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestDocumentsFlow(t *testing.T) {
	app := newTestApp(t)
	session := app.signup("docs@example.com")

	rr := app.do(http.MethodPost, "/api/clients", `{"name":"ACME","email":"billing@acme.test"}`, session)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	clientID := int(decode(t, rr)["id"].(float64))

	rr = app.do(http.MethodPost, "/api/clients", `{"email":"bad"}`, session)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = app.do(http.MethodGet, "/api/clients?q=acm", "", session)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, decode(t, rr)["total"])

	body := fmt.Sprintf(`{"kind":"invoice","client_id":%d,"tax_rate":"0.2","items":[{"type":"hours","description":"dev","quantity":"2","rate":"10"}]}`, clientID)
	rr = app.do(http.MethodPost, "/api/documents", body, session)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	doc := decode(t, rr)
	id := strconv.Itoa(int(doc["id"].(float64)))
	assert.Equal(t, fmt.Sprintf("INV-%d-0001", time.Now().Year()), doc["number"])
	assertAmount(t, "24", doc["total"])

	rr = app.do(http.MethodPost, "/api/documents", fmt.Sprintf(`{"kind":"memo","client_id":%d,"items":[{"quantity":-2}]}`, clientID), session)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	details := decode(t, rr)["details"].(map[string]any)
	assert.Equal(t, "invalid_choice", details["kind"])
	assert.Equal(t, "invalid_quantity", details["items[0].quantity"])

	rr = app.do(http.MethodPost, "/api/documents", fmt.Sprintf(`{"kind":"invoice","client_id":%d,"discount":"0.125","items":[{"quantity":"1","rate":"0.1234567"}]}`, clientID), session)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	details = decode(t, rr)["details"].(map[string]any)
	assert.Equal(t, "invalid_amount", details["discount"])
	assert.Equal(t, "invalid_rate", details["items[0].rate"])

	rr = app.do(http.MethodPatch, "/api/documents/"+id+"/items/0", `{"field":"quantity","value":"1e2000000000"}`, session)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "invalid_quantity", decode(t, rr)["details"].(map[string]any)["value"])

	rr = app.do(http.MethodPost, "/api/documents/"+id+"/items", `{"description":"box","quantity":1,"rate":5}`, session)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assertAmount(t, "30", decode(t, rr)["total"])

	rr = app.do(http.MethodPost, "/api/documents/"+id+"/items/1/delete", "", session)
	require.Equal(t, http.StatusOK, rr.Code)
	assertAmount(t, "24", decode(t, rr)["total"])

	rr = app.do(http.MethodPatch, "/api/documents/"+id+"/items/0", `{"field":"quantity","value":3}`, session)
	require.Equal(t, http.StatusOK, rr.Code)
	assertAmount(t, "36", decode(t, rr)["total"])

	rr = app.do(http.MethodPatch, "/api/documents/"+id+"/items/0", `{"field":"rate","value":"-1"}`, session)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = app.do(http.MethodPost, "/api/documents/"+id+"/items/9/delete", "", session)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = app.do(http.MethodPost, "/api/documents/"+id+"/status", `{"status":"paid"}`, session)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "invalid_transition", decode(t, rr)["error"])

	rr = app.do(http.MethodPost, "/api/documents/"+id+"/status", `{"status":"sent"}`, session)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = app.do(http.MethodPost, "/api/documents/"+id+"/items", `{"quantity":1,"rate":1}`, session)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "not_editable", decode(t, rr)["error"])

	rr = app.do(http.MethodGet, "/api/documents?kind=invoice", "", session)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode(t, rr)["documents"], 1)

	rr = app.do(http.MethodGet, "/api/documents?kind=memo", "", session)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = app.do(http.MethodGet, "/api/documents/"+id+"/pdf", "", session)
	assert.Equal(t, http.StatusPaymentRequired, rr.Code, "pdf export is a pro feature")

	rr = app.do(http.MethodPost, "/api/account/plan", `{"code":"pro"}`, session)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = app.do(http.MethodGet, "/api/documents/"+id+"/pdf", "", session)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")))

	rr = app.do(http.MethodGet, "/api/documents/abc", "", session)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = app.do(http.MethodGet, "/api/documents/999", "", session)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	other := app.signup("mallory@example.com")
	rr = app.do(http.MethodGet, "/api/documents/"+id, "", other)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = app.do(http.MethodGet, fmt.Sprintf("/api/clients/%d", clientID), "", other)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = app.do(http.MethodGet, "/api/stats", "", session)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode(t, rr)
	assert.EqualValues(t, 1, stats["clients"])
	assertAmount(t, "0", stats["revenue"])
}

func TestEstimateConversion(t *testing.T) {
	app := newTestApp(t)
	session := app.signup("est@example.com")
	rr := app.do(http.MethodPost, "/api/clients", `{"name":"Buyer"}`, session)
	require.Equal(t, http.StatusCreated, rr.Code)
	clientID := int(decode(t, rr)["id"].(float64))

	rr = app.do(http.MethodPost, "/api/documents", fmt.Sprintf(`{"kind":"estimate","client_id":%d,"items":[{"quantity":2,"rate":10},{"quantity":1,"rate":5}]}`, clientID), session)
	require.Equal(t, http.StatusCreated, rr.Code)
	id := strconv.Itoa(int(decode(t, rr)["id"].(float64)))

	rr = app.do(http.MethodPost, "/api/documents/"+id+"/convert", "", session)
	assert.Equal(t, http.StatusConflict, rr.Code)

	for _, s := range []string{"sent", "accepted"} {
		rr = app.do(http.MethodPost, "/api/documents/"+id+"/status", `{"status":"`+s+`"}`, session)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}
	rr = app.do(http.MethodPost, "/api/documents/"+id+"/convert", "", session)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	inv := decode(t, rr)
	assert.Equal(t, "invoice", inv["kind"])
	assertAmount(t, "25", inv["total"])

	rr = app.do(http.MethodGet, "/api/documents/"+id, "", session)
	assert.Equal(t, "converted", decode(t, rr)["status"])
}

func TestReceiptUpload(t *testing.T) {
	app := newTestApp(t)
	session := app.signup("rcpt@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "ticket.pdf")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("%PDF-1.4 receipt"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/receipts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(session)
	rr := httptest.NewRecorder()
	app.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rec := decode(t, rr)
	assert.Regexp(t, `^receipts/\d+/[0-9a-f-]{36}\.pdf$`, rec["blob_key"])
	assert.Equal(t, "pending", rec["status"])

	rr = app.do(http.MethodGet, "/api/receipts", "", session)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode(t, rr)["receipts"], 1)

	req = httptest.NewRequest(http.MethodPost, "/api/receipts", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	req.AddCookie(session)
	rr = httptest.NewRecorder()
	app.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLocalizedErrors(t *testing.T) {
	app := newTestApp(t)
	session := app.signup("lang@example.com")
	rr := app.do(http.MethodGet, "/api/documents/999?lang=fr", "", session)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Introuvable", decode(t, rr)["message"])
}

func TestRecover(t *testing.T) {
	h := withRecover(zap.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "internal_error")
}

func TestServe_GracefulShutdown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, srv, ln, zap.NewNop()) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
