package recurring

import (
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/shopspring/decimal"
)

var merchantReplacer = strings.NewReplacer(".", "", ",", "", " ", "")

// NormalizeMerchant standardizes a merchant string for comparison:
// trimmed, lowercased, with dots, commas and spaces removed.
func NormalizeMerchant(name string) string {
	return merchantReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// Similarity returns the Ratcliff/Obershelp ratio of two strings, 2*M/T,
// where M is the number of matched characters and T the combined length.
func Similarity(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

// CanonicalMerchants maps every normalized name to its canonical name.
//
// Names are compared pairwise in the given order. When a pair is at least
// threshold similar, both are mapped to the shorter name (the earlier one on
// a tie). Later pairs overwrite earlier assignments and no transitive closure
// is taken, so a chain A~B~C with A!~C is not guaranteed to collapse.
func CanonicalMerchants(names []string, threshold float64) map[string]string {
	canonical := make(map[string]string, len(names))
	for _, name := range names {
		canonical[name] = name
	}

	for i := 0; i < len(names); i++ {
		a := names[i]
		for j := i + 1; j < len(names); j++ {
			b := names[j]
			if Similarity(a, b) < threshold {
				continue
			}
			c := b
			if utf8.RuneCountInString(a) <= utf8.RuneCountInString(b) {
				c = a
			}
			canonical[a] = c
			canonical[b] = c
		}
	}
	return canonical
}

// AmountBucket rounds an amount to the nearest 0.1, ties to even.
func AmountBucket(amount decimal.Decimal) decimal.Decimal {
	return amount.RoundBank(1)
}
