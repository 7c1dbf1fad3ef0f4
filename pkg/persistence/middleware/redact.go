package middleware

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/aretw0/storyloom/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type redactMiddleware struct {
	next     ports.KVStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks the values of JSON
// object keys matching any pattern before they reach the store, e.g. player
// variables holding an e-mail address. Non-JSON values pass through.
// Redaction is one-way: loads return the masked values.
func NewRedactionMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.KVStore) ports.KVStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Set(ctx context.Context, key string, value []byte) error {
	var doc any
	if len(m.patterns) == 0 || json.Unmarshal(value, &doc) != nil {
		return m.next.Set(ctx, key, value)
	}

	masked := mask(doc, m.patterns)
	data, err := json.Marshal(masked)
	if err != nil {
		return m.next.Set(ctx, key, value)
	}
	return m.next.Set(ctx, key, data)
}

func (m *redactMiddleware) Get(ctx context.Context, key string) ([]byte, error) {
	return m.next.Get(ctx, key)
}

func (m *redactMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// mask walks a decoded JSON document. The document is freshly decoded, so
// it is modified in place.
func mask(v any, patterns []*regexp.Regexp) any {
	switch t := v.(type) {
	case map[string]any:
		for k, sub := range t {
			if matches(k, patterns) {
				t[k] = Mask
				continue
			}
			t[k] = mask(sub, patterns)
		}
	case []any:
		for i, sub := range t {
			t[i] = mask(sub, patterns)
		}
	}
	return v
}

func matches(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
