// Package category maps the category labels found in a ledger export to
// canonical category keys and category IDs.
package category

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Payment is the canonical key of transfer rows. It is never looked up in
// the category table.
const Payment = "payment"

// ErrUnknownCategory is returned when a label has no translation. It means
// the translation table is incomplete and aborts the whole import.
var ErrUnknownCategory = errors.New("unknown category")

// otherSuffixes are the "<group> - other" markers of the export, in the
// order they are stripped.
var otherSuffixes = []string{" - other", " - autre"}

// Resolver translates raw category labels to canonical keys.
type Resolver struct {
	translations map[string]string
}

// NewResolver creates a Resolver from a label→canonical table. Keys and
// values are normalized, and every canonical key also translates to itself
// so that resolving an already canonical key is a no-op.
func NewResolver(translations map[string]string) *Resolver {
	t := make(map[string]string, len(translations)*2)
	for label, canonical := range translations {
		c := normalize(canonical)
		t[normalize(label)] = c
		t[c] = c
	}
	t[Payment] = Payment
	return &Resolver{translations: t}
}

// Resolve returns the canonical key for a raw label such as
// "Divertissement - autre". Canonical keys themselves, such as
// "Entertainment - Other", are accepted alongside the translated labels,
// so ErrUnknownCategory is returned only for a label that is neither.
func (r *Resolver) Resolve(label string) (string, error) {
	key := Normalize(label)
	canonical, ok := r.translations[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, key)
	}
	return canonical, nil
}

// Len returns the number of known labels.
func (r *Resolver) Len() int {
	return len(r.translations)
}

// Normalize lowercases a label and strips one trailing "other" marker per
// locale.
func Normalize(label string) string {
	key := normalize(label)
	for _, suffix := range otherSuffixes {
		key = strings.TrimSuffix(key, suffix)
	}
	return key
}

func normalize(s string) string {
	// Exports re-saved on macOS carry decomposed accents.
	s = norm.NFC.String(strings.TrimSpace(s))
	return cases.Lower(language.Und).String(s)
}
