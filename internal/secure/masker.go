package secure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// Masker replaces registered secrets in text bound for logs, traces,
// console captures and report artifacts.
type Masker struct {
	mu       sync.RWMutex
	secrets  map[string]struct{}
	replacer *strings.Replacer
}

// NewMasker returns a masker with the given values registered.
func NewMasker(values ...Value) *Masker {
	m := &Masker{secrets: make(map[string]struct{})}
	m.Register(values...)
	return m
}

// Register adds values to the masker. Empty values are ignored.
// Each value is also masked in its URL-escaped and JSON-escaped forms.
func (m *Masker) Register(values ...Value) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range values {
		raw := v.Reveal()
		if raw == "" {
			continue
		}
		m.secrets[raw] = struct{}{}
		m.secrets[url.QueryEscape(raw)] = struct{}{}
		m.secrets[url.PathEscape(raw)] = struct{}{}
		for _, escaped := range jsonForms(raw) {
			m.secrets[escaped] = struct{}{}
		}
	}
	m.rebuild()
}

// jsonForms returns raw as it appears inside a JSON string, both with the
// HTML escaping encoding/json applies by default and without it, as CDP
// messages carry it.
func jsonForms(raw string) []string {
	var forms []string
	if b, err := json.Marshal(raw); err == nil {
		forms = append(forms, strings.Trim(string(b), `"`))
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(raw); err == nil {
		forms = append(forms, strings.Trim(strings.TrimSpace(buf.String()), `"`))
	}
	return forms
}

func (m *Masker) rebuild() {
	// Longest first so an escaped form is not half-replaced by a shorter secret.
	keys := make([]string, 0, len(m.secrets))
	for k := range m.secrets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, k, Mask)
	}
	m.replacer = strings.NewReplacer(pairs...)
}

// Redact returns s with every registered secret replaced by Mask.
func (m *Masker) Redact(s string) string {
	if m == nil {
		return s
	}
	m.mu.RLock()
	r := m.replacer
	m.mu.RUnlock()
	if r == nil {
		return s
	}
	return r.Replace(s)
}

// RedactBytes is Redact for byte slices.
func (m *Masker) RedactBytes(b []byte) []byte {
	return []byte(m.Redact(string(b)))
}

// Logf wraps a printf-style logging function so its output is redacted.
// It fits the chromedp WithLogf, WithErrorf and WithDebugf hooks.
func (m *Masker) Logf(logf func(string, ...any)) func(string, ...any) {
	return func(format string, args ...any) {
		logf("%s", m.Redact(fmt.Sprintf(format, args...)))
	}
}
