// Package pricing implements the cross-border order pricing engine: the
// disclosed cost breakdown for a cart of foreign line items, and the
// net-margin guardrail that raises the management fee when an order
// would be priced below the configured floor.
package pricing

import (
	"fmt"

	"github.com/puentecommerce/puente/internal/domain"
	"github.com/puentecommerce/puente/internal/weight"
	"github.com/shopspring/decimal"
)

// importTaxRate is the flat import tax applied to the foreign subtotal.
// Fixed by current regulation, not admin-configurable.
var importTaxRate = decimal.NewFromFloat(0.21)

var one = decimal.NewFromInt(1)

// Breakdown labels, in disclosure order.
const (
	LabelProductPrice  = "Product price"
	LabelImportTax     = "Import tax (21%)"
	LabelCustomsFee    = "Customs processing"
	LabelManagement    = "Management & insurance"
	LabelLocalDelivery = "Local delivery"
)

// FreightLabel returns the freight line label, which discloses the total
// chargeable weight it was computed from.
func FreightLabel(totalKg decimal.Decimal) string {
	return fmt.Sprintf("International freight (%s kg)", totalKg.String())
}

// Quote prices a cart against a settings snapshot. It is a pure function
// of its arguments: no I/O, no shared state, safe for concurrent use.
// An empty cart is a normal state, not an error; it yields a zero,
// checkout-ineligible result.
func Quote(items []domain.LineItem, s Settings) domain.PricingResult {
	if len(items) == 0 {
		return domain.PricingResult{
			CheckoutEligible:    false,
			IneligibilityReason: "cart is empty",
		}
	}

	var (
		totalKg decimal.Decimal
		raw     decimal.Decimal
		imputed bool
	)
	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		kg, src := weight.Resolve(it.DeclaredWeightKg, it.Descriptor, s.WeightTable, s.DefaultWeightKg)
		totalKg = totalKg.Add(kg.Mul(qty))
		raw = raw.Add(it.UnitPriceForeign.Mul(qty))
		if src.Imputed() {
			imputed = true
		}
	}

	productPrice := raw.Mul(one.Add(s.ManagementFeePct))
	importTax := raw.Mul(importTaxRate)
	freight := totalKg.Mul(s.ChargedFreightPerKg)
	customs := s.ChargedCustomsFee
	local := s.ChargedLocalFee

	// The fee percent is charged twice on purpose: once inside the
	// disclosed product price and once as its own line. Changing either
	// changes customer-facing totals. See DESIGN.md before touching.
	managementLine := raw.Mul(s.ManagementFeePct)

	fixedLines := productPrice.Add(importTax).Add(freight).Add(customs).Add(local)

	realCost := raw.
		Add(totalKg.Mul(s.RealFreightPerKg)).
		Add(s.RealCustomsCost).
		Add(s.RealLocalCost)

	total := fixedLines.Add(managementLine)
	margin := netMarginPct(total, realCost, s.PaymentCostPct)

	adjusted := false
	if margin.LessThan(s.MinNetMarginPct) {
		if required, ok := requiredManagementLine(realCost, fixedLines, s); ok {
			capped := capManagementLine(required, raw, s)
			// The fee is only ever raised from its base value, never
			// reduced by the guardrail or its cap.
			if capped.GreaterThan(managementLine) {
				managementLine = capped
				adjusted = true
				total = fixedLines.Add(managementLine)
				margin = netMarginPct(total, realCost, s.PaymentCostPct)
			}
		}
	}

	breakdown := []domain.BreakdownLine{
		{Label: LabelProductPrice, Amount: productPrice},
		{Label: LabelImportTax, Amount: importTax},
		{Label: FreightLabel(totalKg), Amount: freight},
		{Label: LabelCustomsFee, Amount: customs},
		{Label: LabelManagement, Amount: managementLine},
		{Label: LabelLocalDelivery, Amount: local},
	}

	eligible := true
	reason := ""
	if s.MinOrderTotal.IsPositive() && total.LessThan(s.MinOrderTotal) {
		eligible = false
		reason = fmt.Sprintf("order total %s is below the %s minimum",
			total.StringFixed(2), s.MinOrderTotal.StringFixed(2))
	}

	return domain.PricingResult{
		Breakdown:           breakdown,
		TotalFinal:          total.Round(2),
		TotalWeightKg:       totalKg,
		WeightImputed:       imputed,
		ManagementFee:       managementLine,
		GuardrailAdjusted:   adjusted,
		NetMarginPct:        margin,
		CheckoutEligible:    eligible,
		IneligibilityReason: reason,
	}
}

// netMarginPct evaluates profit after payment-processing cost and real
// costs as a fraction of the charged total. A zero total yields zero.
func netMarginPct(total, realCost, paymentCostPct decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	net := total.Mul(one.Sub(paymentCostPct)).Sub(realCost)
	return net.Div(total)
}

// requiredManagementLine solves analytically for the management line
// that lands the net margin exactly on the configured floor:
//
//	total*(1-payment) - realCost = minMargin*total
//	total = realCost / (1 - payment - minMargin)
//
// No iteration is needed afterwards. The target is unreachable when the
// payment cost plus the margin floor consume the whole total; in that
// case ok is false and the base fee stands.
func requiredManagementLine(realCost, fixedLines decimal.Decimal, s Settings) (decimal.Decimal, bool) {
	denom := one.Sub(s.PaymentCostPct).Sub(s.MinNetMarginPct)
	if !denom.IsPositive() {
		return decimal.Zero, false
	}
	required := realCost.Div(denom).Sub(fixedLines)
	if required.IsNegative() {
		return decimal.Zero, true
	}
	return required, true
}

// capManagementLine clamps a guardrail-adjusted line to the configured
// fraction of the raw subtotal. Orders under the subtotal threshold get
// the small-order cap, everything else the large-order cap.
func capManagementLine(line, rawSubtotal decimal.Decimal, s Settings) decimal.Decimal {
	frac := s.LimitAdjustHigh
	if rawSubtotal.LessThan(s.LimitThreshold) {
		frac = s.LimitAdjustLow
	}
	capAmount := rawSubtotal.Mul(frac)
	if line.GreaterThan(capAmount) {
		return capAmount
	}
	return line
}
