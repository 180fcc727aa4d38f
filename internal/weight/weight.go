package weight

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Source identifies where a chargeable weight came from.
type Source string

const (
	SourceDeclared Source = "declared"
	SourceCategory Source = "category"
	SourceDefault  Source = "default"
)

// Imputed reports whether the weight was inferred rather than taken from
// the item's own data.
func (s Source) Imputed() bool {
	return s != SourceDeclared
}

// Rule maps a descriptor keyword to a chargeable weight in kilograms.
// Rules are evaluated in slice order and the first match wins, so the
// table must be carried as an ordered list, never a map.
type Rule struct {
	Keyword  string          `json:"keyword"`
	WeightKg decimal.Decimal `json:"weight_kg"`
}

// Resolve determines the chargeable weight for a single line item.
// A positive declared weight always wins. Otherwise the descriptor is
// lowercased and tested against each rule keyword as a substring, in
// table order. If nothing matches, defaultKg applies. Every input has a
// defined weight; there is no error case.
func Resolve(declaredKg decimal.Decimal, descriptor string, rules []Rule, defaultKg decimal.Decimal) (decimal.Decimal, Source) {
	if declaredKg.IsPositive() {
		return declaredKg, SourceDeclared
	}

	needle := strings.ToLower(descriptor)
	if needle != "" {
		for _, r := range rules {
			if r.Keyword == "" {
				continue
			}
			if strings.Contains(needle, strings.ToLower(r.Keyword)) {
				return r.WeightKg, SourceCategory
			}
		}
	}

	return defaultKg, SourceDefault
}
