package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/bizdesk/auth"
	"github.com/diewo77/bizdesk/httpx"
	"github.com/diewo77/bizdesk/i18n"
	"github.com/diewo77/bizdesk/internal/middleware"
	"github.com/diewo77/bizdesk/internal/models"
	"github.com/diewo77/bizdesk/internal/services"
	"github.com/diewo77/bizdesk/validation"
)

const minPasswordLen = 8

type AuthHandler struct {
	db       *gorm.DB
	sessions *auth.Sessions
	audit    *services.Audit
	log      *zap.Logger
}

func NewAuthHandler(db *gorm.DB, sessions *auth.Sessions, audit *services.Audit, log *zap.Logger) *AuthHandler {
	return &AuthHandler{db: db, sessions: sessions, audit: audit, log: log}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// readCredentials accepts a JSON body or a form post.
func readCredentials(r *http.Request) (credentials, error) {
	var c credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := httpx.Decode(r, &c); err != nil {
			return c, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return c, err
		}
		c = credentials{Email: r.FormValue("email"), Password: r.FormValue("password"), Name: r.FormValue("name")}
	}
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Name = strings.TrimSpace(c.Name)
	return c, nil
}

// done answers a successful auth call: JSON for API clients, a 303 to
// target for browsers.
func done(w http.ResponseWriter, r *http.Request, status int, payload any, target string) {
	if httpx.WantsJSON(r) {
		httpx.JSON(w, status, payload)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Signup creates an account on the free plan and signs it in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	c, err := readCredentials(r)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	v := make(validation.Violations)
	validation.Required("email", c.Email, v)
	validation.Email("email", c.Email, v)
	if len(c.Password) < minPasswordLen {
		v["password"] = "too_short"
	}
	if !v.Empty() {
		invalid(w, r, v)
		return
	}

	var count int64
	if err := h.db.Model(&models.User{}).Where("email = ?", c.Email).Count(&count).Error; err != nil {
		failErr(w, r, err)
		return
	}
	if count > 0 {
		fail(w, r, http.StatusConflict, "email_taken", nil)
		return
	}

	hash, err := auth.HashPassword(c.Password)
	if err != nil {
		failErr(w, r, err)
		return
	}
	user := models.User{Email: c.Email, Name: c.Name, Password: hash, Lang: middleware.LangFrom(r)}
	var free models.Plan
	if err := h.db.Where("code = ?", models.PlanFree).First(&free).Error; err == nil {
		user.PlanID = &free.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		failErr(w, r, err)
		return
	}
	if err := h.db.Create(&user).Error; err != nil {
		failErr(w, r, err)
		return
	}

	h.sessions.Create(w, user.ID)
	h.audit.Event(r.Context(), user.ID, "user", user.ID, "signup")
	h.log.Info("signup", zap.Uint("user_id", user.ID))
	done(w, r, http.StatusCreated, user, "/")
}

// Login checks the password and starts a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	c, err := readCredentials(r)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	if c.Email == "" || c.Password == "" {
		v := make(validation.Violations)
		validation.Required("email", c.Email, v)
		validation.Required("password", c.Password, v)
		invalid(w, r, v)
		return
	}

	var user models.User
	err = h.db.Where("email = ?", c.Email).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		failErr(w, r, err)
		return
	}
	if err != nil || !auth.CheckPassword(user.Password, c.Password) {
		h.audit.Record(r.Context(), models.AuditLog{UserID: user.ID, EntityType: "user", Action: "login_failed", NewValue: c.Email})
		h.log.Warn("login failed", zap.String("email", c.Email))
		fail(w, r, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}

	h.sessions.Create(w, user.ID)
	h.audit.Event(r.Context(), user.ID, "user", user.ID, "login")
	h.log.Info("login", zap.Uint("user_id", user.ID))
	if user.Lang != "" && i18n.IsSupported(user.Lang) {
		http.SetCookie(w, &http.Cookie{Name: "lang", Value: user.Lang, Path: "/", MaxAge: 86400 * 30, HttpOnly: true})
	}
	done(w, r, http.StatusOK, user, "/")
}

// Logout clears the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if uid, ok := h.sessions.Parse(r); ok {
		h.audit.Event(r.Context(), uid, "user", uid, "logout")
	}
	h.sessions.Clear(w)
	if httpx.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
