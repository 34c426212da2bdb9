// Package middleware holds request-scoped preferences shared by handlers.
package middleware

import (
	"context"
	"net/http"

	"github.com/diewo77/bizdesk/i18n"
)

type ctxKey string

const ctxLang ctxKey = "pref_lang"

const langCookie = "lang"

// Lang resolves the UI language (query > cookie > Accept-Language) and
// stores it in the request context. A language chosen by query is kept in a
// cookie for 30 days. Unsupported values fall back to fallback.
func Lang(fallback string) func(http.Handler) http.Handler {
	if !i18n.IsSupported(fallback) {
		fallback = i18n.Default
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := ""
			if c, err := r.Cookie(langCookie); err == nil {
				lang = i18n.Normalize(c.Value)
			}
			if q := i18n.Normalize(r.URL.Query().Get("lang")); q != "" {
				lang = q
				http.SetCookie(w, &http.Cookie{Name: langCookie, Value: lang, Path: "/", MaxAge: 86400 * 30, HttpOnly: true})
			}
			if lang == "" {
				lang = i18n.Negotiate(r.Header.Get("Accept-Language"), fallback)
			}
			next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), lang)))
		})
	}
}

// WithLang stores lang in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxLang, lang)
}

// LangFrom returns the language of r, or the default language.
func LangFrom(r *http.Request) string {
	if v, ok := r.Context().Value(ctxLang).(string); ok && v != "" {
		return v
	}
	return i18n.Default
}
