// Package voice maps free-form spoken text to navigation actions.
//
// Matching is two-phase: a literal substring pass over every command, then a
// fuzzy pass comparing each word of the text to each pattern by normalized
// Levenshtein similarity. The first command to qualify in declaration order
// wins.
package voice

import (
	"strings"
	"unicode"
)

const (
	// DefaultLocale is used when a command has no response for the
	// requested locale.
	DefaultLocale = "en-US"
	// DefaultThreshold is the similarity a word must exceed to count as a
	// fuzzy match.
	DefaultThreshold = 0.70
)

// Kind tells how a command was matched.
type Kind string

const (
	KindExact Kind = "exact"
	KindFuzzy Kind = "fuzzy"
)

// Result is a matched command.
type Result struct {
	Action   string  `json:"action"`
	Response string  `json:"response"`
	Kind     Kind    `json:"kind"`
	Score    float64 `json:"score"`
}

// Matcher binds a command table to matching options. It is immutable and
// safe for concurrent use.
type Matcher struct {
	commands      []compiled
	defaultLocale string
	threshold     float64
}

type compiled struct {
	action    string
	patterns  []string
	responses map[string]string
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithDefaultLocale sets the locale used when a response is missing for the
// requested one.
func WithDefaultLocale(locale string) Option {
	return func(m *Matcher) {
		if locale != "" {
			m.defaultLocale = locale
		}
	}
}

// WithThreshold overrides DefaultThreshold. Values outside (0, 1] are ignored.
func WithThreshold(t float64) Option {
	return func(m *Matcher) {
		if t > 0 && t <= 1 {
			m.threshold = t
		}
	}
}

// NewMatcher copies table into a Matcher. Blank patterns are dropped and
// the rest are lower-cased.
func NewMatcher(table Table, opts ...Option) *Matcher {
	m := &Matcher{defaultLocale: DefaultLocale, threshold: DefaultThreshold}
	for _, o := range opts {
		o(m)
	}
	m.commands = make([]compiled, 0, len(table))
	for _, c := range table {
		cc := compiled{action: c.Action, responses: make(map[string]string, len(c.Responses))}
		for _, p := range c.Patterns {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				cc.patterns = append(cc.patterns, p)
			}
		}
		for k, v := range c.Responses {
			cc.responses[k] = v
		}
		m.commands = append(m.commands, cc)
	}
	return m
}

// DefaultLocale reports the fallback locale of m.
func (m *Matcher) DefaultLocale() string { return m.defaultLocale }

// Match resolves text to a command. ok is false when nothing qualifies.
func (m *Matcher) Match(text, locale string) (Result, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return Result{}, false
	}
	for _, c := range m.commands {
		for _, p := range c.patterns {
			if strings.Contains(text, p) {
				return m.result(c, locale, KindExact, 1), true
			}
		}
	}
	words := tokenize(text)
	for _, c := range m.commands {
		best := 0.0
		for _, w := range words {
			for _, p := range c.patterns {
				if s := Similarity(w, p); s > best {
					best = s
				}
			}
		}
		if best > m.threshold {
			return m.result(c, locale, KindFuzzy, best), true
		}
	}
	return Result{}, false
}

func (m *Matcher) result(c compiled, locale string, kind Kind, score float64) Result {
	return Result{Action: c.action, Response: m.response(c, locale), Kind: kind, Score: score}
}

func (m *Matcher) response(c compiled, locale string) string {
	if r, ok := c.responses[locale]; ok {
		return r
	}
	return c.responses[m.defaultLocale]
}

// tokenize splits on whitespace and trims surrounding punctuation.
func tokenize(text string) []string {
	fields := strings.Fields(text)
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Match resolves text against table with the default options.
func Match(text, locale string, table Table) (Result, bool) {
	return NewMatcher(table).Match(text, locale)
}
