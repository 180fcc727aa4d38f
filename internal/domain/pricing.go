package domain

import "github.com/shopspring/decimal"

// LineItem is one cart entry to be priced. Prices are in the foreign
// store's currency; weights are kilograms. A zero DeclaredWeightKg means
// "not declared" and the weight is inferred from the descriptor.
// Callers are responsible for rejecting negative prices and quantities
// below 1 before quoting (the engine treats inputs as total).
type LineItem struct {
	UnitPriceForeign decimal.Decimal
	Quantity         int32
	DeclaredWeightKg decimal.Decimal
	Descriptor       string
}

// BreakdownLine is one disclosed charge on the quote. Slice order is the
// disclosure order shown to the buyer and is part of the contract.
type BreakdownLine struct {
	Label  string
	Amount decimal.Decimal
}

// PricingResult is the final, disclosed outcome of pricing a cart.
// Breakdown amounts are left unrounded so they reconcile exactly with
// TotalFinal, which is rounded to 2 decimal places. Order creation
// persists TotalFinal verbatim as the amount charged.
type PricingResult struct {
	Breakdown     []BreakdownLine
	TotalFinal    decimal.Decimal
	TotalWeightKg decimal.Decimal

	// WeightImputed is true when any line's weight was inferred from the
	// keyword table or the default rather than declared.
	WeightImputed bool

	// ManagementFee is the final management/insurance line, after any
	// guardrail adjustment.
	ManagementFee decimal.Decimal

	// GuardrailAdjusted is true when the management fee was raised to
	// protect the minimum net margin.
	GuardrailAdjusted bool

	// NetMarginPct is the evaluated net margin of the final total, after
	// payment-processing cost and real costs.
	NetMarginPct decimal.Decimal

	CheckoutEligible    bool
	IneligibilityReason string
}
