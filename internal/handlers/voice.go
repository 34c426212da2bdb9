package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/diewo77/bizdesk/httpx"
	"github.com/diewo77/bizdesk/i18n"
	"github.com/diewo77/bizdesk/internal/middleware"
	"github.com/diewo77/bizdesk/internal/voice"
	"github.com/diewo77/bizdesk/validation"
)

type VoiceHandler struct {
	matcher *voice.Matcher
	log     *zap.Logger
}

func NewVoiceHandler(m *voice.Matcher, log *zap.Logger) *VoiceHandler {
	return &VoiceHandler{matcher: m, log: log}
}

type matchRequest struct {
	Text   string `json:"text"`
	Locale string `json:"locale"`
}

// Match resolves a transcript to a navigation command. Without a locale the
// request language is used; a supported locale such as es-MX is reduced to
// its response key (es). Unmatched text answers 404 no_match with the
// generic fallback phrase in the caller's language.
func (h *VoiceHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := httpx.Decode(r, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		invalid(w, r, validation.Violations{"text": "required"})
		return
	}
	lang := middleware.LangFrom(r)
	locale := req.Locale
	if locale == "" {
		locale = i18n.VoiceLocale(lang)
	} else if l := i18n.Normalize(locale); l != "" {
		lang = l
		locale = i18n.VoiceLocale(l)
	}

	res, ok := h.matcher.Match(req.Text, locale)
	if !ok {
		h.log.Debug("voice no match", zap.String("text", req.Text), zap.String("locale", locale))
		httpx.JSONErrorMessage(w, http.StatusNotFound, "no_match", i18n.T(lang, "voice_fallback"), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}
