package pricing

import "github.com/shopspring/decimal"

// EstimateUnitPrice returns the marked-up price shown on a single-item
// product page, without freight, tax lines, or the guardrail. It must
// stay numerically identical to the product-price line Quote produces
// for a one-item, unit-quantity cart; the calculator tests pin that.
func EstimateUnitPrice(unitPriceForeign decimal.Decimal, s Settings) decimal.Decimal {
	return unitPriceForeign.Mul(one.Add(s.ManagementFeePct))
}
