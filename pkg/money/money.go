// Package money formats integer cents for display and validates ISO-4217
// currency codes.
package money

import (
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
)

// NormalizeCurrency upper-cases a currency code and checks it is a known
// ISO-4217 code.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if gomoney.GetCurrency(code) == nil {
		return "", fmt.Errorf("unknown currency code %q", code)
	}
	return code, nil
}

// Format renders cents in the given currency, e.g. "€10.01".
func Format(cents int64, currency string) string {
	return gomoney.New(cents, currency).Display()
}
