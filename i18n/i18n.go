// Package i18n holds the message catalog and language negotiation.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Default is the language used when nothing better is known.
const Default = "en"

// Supported lists the catalog languages.
var Supported = []string{"en", "fr", "es"}

// IsSupported reports whether lang has a catalog.
func IsSupported(lang string) bool {
	_, ok := catalog[lang]
	return ok
}

// DetectLanguage picks the first supported base language of an
// Accept-Language header, or Default.
func DetectLanguage(header string) string {
	return Negotiate(header, Default)
}

// Negotiate is DetectLanguage with an explicit fallback.
func Negotiate(header, fallback string) string {
	prefs, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return fallback
	}
	for _, tag := range prefs {
		base, conf := tag.Base()
		if conf == language.No {
			continue
		}
		if b := base.String(); IsSupported(b) {
			return b
		}
	}
	return fallback
}

// Normalize maps a tag such as "FR-ca" or "es_MX" to its supported base
// language, or "" when unsupported.
func Normalize(tag string) string {
	t, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
	if err != nil {
		return ""
	}
	base, _ := t.Base()
	if b := base.String(); IsSupported(b) {
		return b
	}
	return ""
}

// VoiceLocale converts a catalog language into the locale keys used by
// voice command responses (en-US, es, fr).
func VoiceLocale(lang string) string {
	switch Normalize(lang) {
	case "es":
		return "es"
	case "fr":
		return "fr"
	default:
		return "en-US"
	}
}

// T translates code into lang. Missing entries fall back to the Default
// catalog, then to the code itself.
func T(lang, code string) string {
	if m, ok := catalog[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := catalog[Default][code]; ok {
		return s
	}
	return code
}
