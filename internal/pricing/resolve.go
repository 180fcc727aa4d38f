package pricing

import (
	"slices"

	"github.com/puentecommerce/puente/internal/settings"
	"github.com/puentecommerce/puente/internal/weight"
	"github.com/shopspring/decimal"
)

// Package defaults applied when the admin record leaves a field unset.
var (
	defaultManagementFeePct    = decimal.NewFromFloat(0.10)
	defaultChargedFreightPerKg = decimal.NewFromInt(15)
	defaultChargedCustomsFee   = decimal.NewFromInt(40)
	defaultChargedLocalFee     = decimal.NewFromInt(25)

	defaultRealFreightPerKg = decimal.NewFromInt(11)
	defaultRealCustomsCost  = decimal.NewFromInt(18)
	defaultRealLocalCost    = decimal.NewFromInt(12)
	defaultPaymentCostPct   = decimal.NewFromFloat(0.054)

	defaultMinNetMarginPct = decimal.NewFromFloat(0.12)
	defaultMinOrderTotal   = decimal.NewFromInt(50)
	defaultLimitAdjustLow  = decimal.NewFromFloat(0.35)
	defaultLimitAdjustHigh = decimal.NewFromFloat(0.20)
	defaultLimitThreshold  = decimal.NewFromInt(150)

	defaultWeightKg = decimal.NewFromFloat(0.5)
)

// defaultWeightTable is the built-in keyword table, most specific
// categories first. Order matters: the resolver takes the first match.
var defaultWeightTable = []weight.Rule{
	{Keyword: "notebook", WeightKg: decimal.NewFromFloat(2.5)},
	{Keyword: "laptop", WeightKg: decimal.NewFromFloat(2.5)},
	{Keyword: "sneaker", WeightKg: decimal.NewFromFloat(1.2)},
	{Keyword: "zapatilla", WeightKg: decimal.NewFromFloat(1.2)},
	{Keyword: "tablet", WeightKg: decimal.NewFromFloat(0.7)},
	{Keyword: "perfume", WeightKg: decimal.NewFromFloat(0.6)},
	{Keyword: "book", WeightKg: decimal.NewFromFloat(0.5)},
	{Keyword: "libro", WeightKg: decimal.NewFromFloat(0.5)},
	{Keyword: "phone", WeightKg: decimal.NewFromFloat(0.4)},
	{Keyword: "celular", WeightKg: decimal.NewFromFloat(0.4)},
	{Keyword: "headphone", WeightKg: decimal.NewFromFloat(0.3)},
	{Keyword: "auricular", WeightKg: decimal.NewFromFloat(0.3)},
	{Keyword: "watch", WeightKg: decimal.NewFromFloat(0.3)},
	{Keyword: "reloj", WeightKg: decimal.NewFromFloat(0.3)},
	{Keyword: "case", WeightKg: decimal.NewFromFloat(0.2)},
	{Keyword: "funda", WeightKg: decimal.NewFromFloat(0.2)},
}

// DefaultWeightTable returns a copy of the built-in keyword table.
func DefaultWeightTable() []weight.Rule {
	return slices.Clone(defaultWeightTable)
}

// Resolution tags where a resolved field value came from.
type Resolution int

const (
	ResolvedDefault Resolution = iota
	ResolvedExplicitZero
	ResolvedExplicitValue
)

// Policy names how a field treats an explicit zero override. The two
// policies are distinct business rules and must not be unified: zeroing
// a charged flat fee is a supported promotion, zeroing a fee percent or
// a guardrail is not a supported state.
type Policy int

const (
	// StrictZero honors an explicit zero as zero. Applied to the charged
	// customs and local-delivery fees, which an administrator may waive.
	StrictZero Policy = iota

	// PreferDefault treats an explicit zero the same as "not configured"
	// and falls back to the package default. Applied to every rate, real
	// cost and guardrail field, where zero would defeat the guardrail.
	PreferDefault
)

// ResolveField applies the three-state override logic for one field:
// present non-zero wins, explicit zero is honored or defaulted per the
// policy, absent falls back to the default.
func ResolveField(ov settings.Override, def decimal.Decimal, p Policy) (decimal.Decimal, Resolution) {
	if !ov.Set {
		return def, ResolvedDefault
	}
	if ov.Value.IsZero() {
		if p == StrictZero {
			return decimal.Zero, ResolvedExplicitZero
		}
		return def, ResolvedDefault
	}
	return ov.Value, ResolvedExplicitValue
}

// Settings is the fully-resolved, immutable snapshot the calculator
// consumes. It is built fresh per call and never mutated by the engine,
// so concurrent quotes with different admin records cannot interfere.
type Settings struct {
	ManagementFeePct    decimal.Decimal
	ChargedFreightPerKg decimal.Decimal
	ChargedCustomsFee   decimal.Decimal
	ChargedLocalFee     decimal.Decimal

	RealFreightPerKg decimal.Decimal
	RealCustomsCost  decimal.Decimal
	RealLocalCost    decimal.Decimal
	PaymentCostPct   decimal.Decimal

	MinNetMarginPct decimal.Decimal
	MinOrderTotal   decimal.Decimal
	LimitAdjustLow  decimal.Decimal
	LimitAdjustHigh decimal.Decimal
	LimitThreshold  decimal.Decimal

	DefaultWeightKg decimal.Decimal
	WeightTable     []weight.Rule
}

// Resolve builds a Settings snapshot from the admin record. Resolution
// is applied independently per field: a record missing one value still
// honors every other one.
func Resolve(ov settings.Overrides) Settings {
	var s Settings

	s.ManagementFeePct, _ = ResolveField(ov.ManagementFeePct, defaultManagementFeePct, PreferDefault)
	s.ChargedFreightPerKg, _ = ResolveField(ov.ChargedFreightPerKg, defaultChargedFreightPerKg, PreferDefault)
	s.ChargedCustomsFee, _ = ResolveField(ov.ChargedCustomsFee, defaultChargedCustomsFee, StrictZero)
	s.ChargedLocalFee, _ = ResolveField(ov.ChargedLocalFee, defaultChargedLocalFee, StrictZero)

	s.RealFreightPerKg, _ = ResolveField(ov.RealFreightPerKg, defaultRealFreightPerKg, PreferDefault)
	s.RealCustomsCost, _ = ResolveField(ov.RealCustomsCost, defaultRealCustomsCost, PreferDefault)
	s.RealLocalCost, _ = ResolveField(ov.RealLocalCost, defaultRealLocalCost, PreferDefault)
	s.PaymentCostPct, _ = ResolveField(ov.PaymentCostPct, defaultPaymentCostPct, PreferDefault)

	s.MinNetMarginPct, _ = ResolveField(ov.MinNetMarginPct, defaultMinNetMarginPct, PreferDefault)
	s.MinOrderTotal, _ = ResolveField(ov.MinOrderTotal, defaultMinOrderTotal, PreferDefault)
	s.LimitAdjustLow, _ = ResolveField(ov.LimitAdjustLow, defaultLimitAdjustLow, PreferDefault)
	s.LimitAdjustHigh, _ = ResolveField(ov.LimitAdjustHigh, defaultLimitAdjustHigh, PreferDefault)
	s.LimitThreshold, _ = ResolveField(ov.LimitThreshold, defaultLimitThreshold, PreferDefault)

	s.DefaultWeightKg, _ = ResolveField(ov.DefaultWeightKg, defaultWeightKg, PreferDefault)
	if ov.WeightTable != nil {
		s.WeightTable = slices.Clone(ov.WeightTable)
	} else {
		s.WeightTable = DefaultWeightTable()
	}

	return s
}
