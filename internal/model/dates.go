package model

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ParseDate parses a stored date that is either a plain YYYY-MM-DD string or
// a timestamp with a time component, which is discarded.
func ParseDate(raw string) (civil.Date, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, "T "); i >= 0 {
		raw = raw[:i]
	}
	return civil.ParseDate(raw)
}

// DateOrFallback converts a stored date value into a calendar date, returning
// fallback when the value cannot be interpreted.
func DateOrFallback(v any, fallback civil.Date) civil.Date {
	switch val := v.(type) {
	case civil.Date:
		if val.IsValid() {
			return val
		}
	case time.Time:
		if !val.IsZero() {
			return civil.DateOf(val)
		}
	case *time.Time:
		if val != nil && !val.IsZero() {
			return civil.DateOf(*val)
		}
	case string:
		if d, err := ParseDate(val); err == nil {
			return d
		}
	}
	return fallback
}

// FormatMoney renders an amount with a currency label and grouped digits, e.g. "RM 1,250.00".
func FormatMoney(currency string, amount decimal.Decimal) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%s %.2f", currency, amount.InexactFloat64())
}
