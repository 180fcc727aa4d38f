package pricing_test

import (
	"testing"

	"github.com/puentecommerce/puente/internal/domain"
	"github.com/puentecommerce/puente/internal/pricing"
	"github.com/puentecommerce/puente/internal/settings"
	"github.com/puentecommerce/puente/internal/weight"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// caseOnlyTable is the catalog scenario used across these tests: a
// single "case" keyword so "iphone case" resolves to 0.2 kg.
func caseOnlyTable() []weight.Rule {
	return []weight.Rule{
		{Keyword: "case", WeightKg: d(0.2)},
	}
}

func phoneCaseItem(price float64) domain.LineItem {
	return domain.LineItem{
		UnitPriceForeign: d(price),
		Quantity:         1,
		Descriptor:       "iphone case",
	}
}

func lineAmount(t *testing.T, res domain.PricingResult, label string) decimal.Decimal {
	t.Helper()
	for _, l := range res.Breakdown {
		if l.Label == label {
			return l.Amount
		}
	}
	t.Fatalf("breakdown line %q not found", label)
	return decimal.Decimal{}
}

func TestQuote_SingleItemDefaultRates(t *testing.T) {
	// One item at 100 foreign, no declared weight, descriptor matches
	// "case" → 0.2 kg. Default rates: 10% management fee, 15/kg freight,
	// 40 customs, 25 local delivery. Real costs are low enough that the
	// guardrail stays quiet, so the management line is the raw 10%.
	s := pricing.Resolve(settings.Overrides{WeightTable: caseOnlyTable()})

	res := pricing.Quote([]domain.LineItem{phoneCaseItem(100)}, s)

	assert.True(t, d(0.2).Equal(res.TotalWeightKg))
	assert.True(t, res.WeightImputed)

	assert.True(t, d(110).Equal(lineAmount(t, res, pricing.LabelProductPrice)))
	assert.True(t, d(21).Equal(lineAmount(t, res, pricing.LabelImportTax)))
	assert.True(t, d(3).Equal(lineAmount(t, res, pricing.FreightLabel(d(0.2)))))
	assert.True(t, d(40).Equal(lineAmount(t, res, pricing.LabelCustomsFee)))
	assert.True(t, d(10).Equal(lineAmount(t, res, pricing.LabelManagement)))
	assert.True(t, d(25).Equal(lineAmount(t, res, pricing.LabelLocalDelivery)))

	assert.False(t, res.GuardrailAdjusted)
	assert.True(t, d(209).Equal(res.TotalFinal), "total was %s", res.TotalFinal)
	assert.True(t, res.CheckoutEligible)
	assert.Empty(t, res.IneligibilityReason)
}

func TestQuote_BreakdownDisclosureOrder(t *testing.T) {
	s := pricing.Resolve(settings.Overrides{WeightTable: caseOnlyTable()})

	res := pricing.Quote([]domain.LineItem{phoneCaseItem(100)}, s)

	require.Len(t, res.Breakdown, 6)
	assert.Equal(t, pricing.LabelProductPrice, res.Breakdown[0].Label)
	assert.Equal(t, pricing.LabelImportTax, res.Breakdown[1].Label)
	assert.Equal(t, pricing.FreightLabel(d(0.2)), res.Breakdown[2].Label)
	assert.Equal(t, pricing.LabelCustomsFee, res.Breakdown[3].Label)
	assert.Equal(t, pricing.LabelManagement, res.Breakdown[4].Label)
	assert.Equal(t, pricing.LabelLocalDelivery, res.Breakdown[5].Label)
}

func TestQuote_ExplicitZeroCustomsFeeIsHonored(t *testing.T) {
	// An explicitly zeroed customs fee is a promotion, not a missing
	// value: the line must be exactly zero, never the 40 default.
	s := pricing.Resolve(settings.Overrides{
		WeightTable:       caseOnlyTable(),
		ChargedCustomsFee: settings.Explicit(decimal.Zero),
	})

	res := pricing.Quote([]domain.LineItem{phoneCaseItem(100)}, s)

	assert.True(t, lineAmount(t, res, pricing.LabelCustomsFee).IsZero())
	assert.True(t, d(169).Equal(res.TotalFinal), "total was %s", res.TotalFinal)
}

func TestQuote_GuardrailRaisesManagementFee(t *testing.T) {
	// Real costs high enough that the baseline margin lands under the
	// 15% floor. The fee must rise above the raw 10% of subtotal and the
	// recomputed margin must sit on the floor.
	s := pricing.Resolve(settings.Overrides{
		MinNetMarginPct: settings.Explicit(d(0.15)),
		RealCustomsCost: settings.Explicit(d(150)),
		RealLocalCost:   settings.Explicit(d(60)),
	})

	items := []domain.LineItem{{
		UnitPriceForeign: d(1000),
		Quantity:         1,
		DeclaredWeightKg: d(2),
		Descriptor:       "espresso machine",
	}}

	res := pricing.Quote(items, s)

	assert.True(t, res.GuardrailAdjusted)
	assert.True(t, res.ManagementFee.GreaterThan(d(100)),
		"management fee %s should exceed the unadjusted 10%% of 1000", res.ManagementFee)

	epsilon := d(0.000001)
	assert.True(t, res.NetMarginPct.GreaterThanOrEqual(d(0.15).Sub(epsilon)),
		"margin %s below floor", res.NetMarginPct)
	assert.True(t, res.NetMarginPct.LessThan(d(0.16)),
		"margin %s overshot the analytic target", res.NetMarginPct)
}

func TestQuote_GuardrailNeverLowersFee(t *testing.T) {
	// Comfortable margins: the guardrail must not touch the base fee.
	s := pricing.Resolve(settings.Overrides{
		MinNetMarginPct: settings.Explicit(d(0.01)),
	})

	items := []domain.LineItem{{
		UnitPriceForeign: d(500),
		Quantity:         1,
		DeclaredWeightKg: d(1),
	}}

	res := pricing.Quote(items, s)

	assert.False(t, res.GuardrailAdjusted)
	assert.True(t, d(50).Equal(res.ManagementFee))
}

func TestQuote_AdjustmentCappedForLargeOrders(t *testing.T) {
	// Costs so high the analytic target needs more fee than the cap
	// allows. Subtotal 1000 ≥ the 150 threshold, so the large-order cap
	// (20% of subtotal) applies: the fee stops at 200 and the margin is
	// allowed to miss the floor.
	s := pricing.Resolve(settings.Overrides{
		MinNetMarginPct: settings.Explicit(d(0.15)),
		RealCustomsCost: settings.Explicit(d(300)),
		RealLocalCost:   settings.Explicit(d(100)),
	})

	items := []domain.LineItem{{
		UnitPriceForeign: d(1000),
		Quantity:         1,
		DeclaredWeightKg: d(2),
	}}

	res := pricing.Quote(items, s)

	assert.True(t, res.GuardrailAdjusted)
	assert.True(t, d(200).Equal(res.ManagementFee),
		"fee %s should be clamped to 20%% of subtotal", res.ManagementFee)
	assert.True(t, res.NetMarginPct.LessThan(d(0.15)))
}

func TestQuote_AdjustmentCappedForSmallOrders(t *testing.T) {
	// Subtotal 100 < the 150 threshold → the small-order cap (35% of
	// subtotal) applies.
	s := pricing.Resolve(settings.Overrides{
		MinNetMarginPct: settings.Explicit(d(0.15)),
		RealCustomsCost: settings.Explicit(d(150)),
	})

	items := []domain.LineItem{{
		UnitPriceForeign: d(100),
		Quantity:         1,
		DeclaredWeightKg: d(1),
	}}

	res := pricing.Quote(items, s)

	assert.True(t, res.GuardrailAdjusted)
	assert.True(t, d(35).Equal(res.ManagementFee),
		"fee %s should be clamped to 35%% of subtotal", res.ManagementFee)
}

func TestQuote_UnreachableMarginTargetKeepsBaseFee(t *testing.T) {
	// Payment cost plus margin floor ≥ 100%: the analytic target has no
	// solution, so the base fee stands rather than going negative or
	// blowing up.
	s := pricing.Resolve(settings.Overrides{
		PaymentCostPct:  settings.Explicit(d(0.45)),
		MinNetMarginPct: settings.Explicit(d(0.60)),
	})

	items := []domain.LineItem{{
		UnitPriceForeign: d(100),
		Quantity:         1,
		DeclaredWeightKg: d(1),
	}}

	res := pricing.Quote(items, s)

	assert.False(t, res.GuardrailAdjusted)
	assert.True(t, d(10).Equal(res.ManagementFee))
}

func TestQuote_TotalMonotonicInMarginFloor(t *testing.T) {
	// Raising the margin floor must never lower the total, and lowering
	// it must never raise the total.
	items := []domain.LineItem{{
		UnitPriceForeign: d(200),
		Quantity:         1,
		DeclaredWeightKg: d(1),
	}}

	floors := []float64{0.05, 0.10, 0.15, 0.20, 0.25, 0.30}
	var prev decimal.Decimal
	for i, floor := range floors {
		s := pricing.Resolve(settings.Overrides{
			MinNetMarginPct: settings.Explicit(d(floor)),
			RealCustomsCost: settings.Explicit(d(80)),
		})
		total := pricing.Quote(items, s).TotalFinal
		if i > 0 {
			assert.True(t, total.GreaterThanOrEqual(prev),
				"floor %.2f produced total %s below previous %s", floor, total, prev)
		}
		prev = total
	}
}

func TestQuote_QuantityWeightedTotals(t *testing.T) {
	s := pricing.Resolve(settings.Overrides{WeightTable: caseOnlyTable()})

	items := []domain.LineItem{
		{UnitPriceForeign: d(10), Quantity: 3, DeclaredWeightKg: d(0.5)},
		{UnitPriceForeign: d(5), Quantity: 2, Descriptor: "leather case"},
	}

	res := pricing.Quote(items, s)

	// 3×0.5 declared + 2×0.2 from the table.
	assert.True(t, d(1.9).Equal(res.TotalWeightKg), "weight was %s", res.TotalWeightKg)
	assert.True(t, res.WeightImputed)

	// Subtotal 40 → product price 44, import tax 8.40.
	assert.True(t, d(44).Equal(lineAmount(t, res, pricing.LabelProductPrice)))
	assert.True(t, d(8.4).Equal(lineAmount(t, res, pricing.LabelImportTax)))
}

func TestQuote_EmptyCart(t *testing.T) {
	s := pricing.Resolve(settings.Overrides{})

	res := pricing.Quote(nil, s)

	assert.True(t, res.TotalFinal.IsZero())
	assert.False(t, res.CheckoutEligible)
	assert.NotEmpty(t, res.IneligibilityReason)
	assert.Empty(t, res.Breakdown)
}

func TestQuote_MinimumOrderTotalGatesCheckout(t *testing.T) {
	s := pricing.Resolve(settings.Overrides{
		WeightTable:   caseOnlyTable(),
		MinOrderTotal: settings.Explicit(d(500)),
	})

	res := pricing.Quote([]domain.LineItem{phoneCaseItem(100)}, s)

	// The quote still prices fully; only eligibility flips.
	assert.True(t, d(209).Equal(res.TotalFinal))
	assert.False(t, res.CheckoutEligible)
	assert.Contains(t, res.IneligibilityReason, "below")
}

func TestQuote_Idempotent(t *testing.T) {
	s := pricing.Resolve(settings.Overrides{WeightTable: caseOnlyTable()})
	items := []domain.LineItem{phoneCaseItem(100), {
		UnitPriceForeign: d(33.37),
		Quantity:         2,
		Descriptor:       "mystery box",
	}}

	first := pricing.Quote(items, s)
	second := pricing.Quote(items, s)

	assert.Equal(t, first, second)
}

func TestQuote_BreakdownReconcilesWithTotal(t *testing.T) {
	carts := [][]domain.LineItem{
		{phoneCaseItem(100)},
		{
			{UnitPriceForeign: d(33.37), Quantity: 3, Descriptor: "wireless headphone"},
			{UnitPriceForeign: d(7.77), Quantity: 1, DeclaredWeightKg: d(0.123)},
		},
		{
			{UnitPriceForeign: d(999.99), Quantity: 1, DeclaredWeightKg: d(4.2)},
		},
	}

	s := pricing.Resolve(settings.Overrides{})
	cent := d(0.01)

	for _, items := range carts {
		res := pricing.Quote(items, s)

		var sum decimal.Decimal
		for _, l := range res.Breakdown {
			sum = sum.Add(l.Amount)
		}

		diff := sum.Sub(res.TotalFinal).Abs()
		assert.True(t, diff.LessThanOrEqual(cent),
			"breakdown sum %s vs total %s", sum, res.TotalFinal)
	}
}

func TestEstimateUnitPrice_MatchesFullEngine(t *testing.T) {
	// The product-page estimate must track the product-price line the
	// full engine discloses for a one-item, unit-quantity cart.
	s := pricing.Resolve(settings.Overrides{})

	for _, price := range []float64{1, 49.90, 99.99, 1234.56} {
		estimate := pricing.EstimateUnitPrice(d(price), s)

		res := pricing.Quote([]domain.LineItem{{
			UnitPriceForeign: d(price),
			Quantity:         1,
			DeclaredWeightKg: d(1),
		}}, s)

		assert.True(t, estimate.Equal(res.Breakdown[0].Amount),
			"estimate %s diverged from engine product price %s", estimate, res.Breakdown[0].Amount)
	}
}
