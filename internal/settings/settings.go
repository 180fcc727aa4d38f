// Package settings carries the admin-editable pricing record and its
// storage. The record preserves the three-state distinction between a
// field that was never configured, one explicitly zeroed, and one set to
// a value; resolution into effective rates happens in the pricing
// package, not here.
package settings

import (
	"context"

	"github.com/puentecommerce/puente/internal/weight"
	"github.com/shopspring/decimal"
)

// Override carries one admin-editable numeric field through storage
// without collapsing "absent" into "zero". Set=false means the field was
// never configured. Set=true with a zero Value is an explicit zero — for
// strict-zero fields that is a promotional waiver, and silently reverting
// it to a default would be a pricing bug.
type Override struct {
	Value decimal.Decimal
	Set   bool
}

// Explicit returns an Override carrying v.
func Explicit(v decimal.Decimal) Override {
	return Override{Value: v, Set: true}
}

// Overrides is the admin pricing record as stored. Zero value means
// "nothing configured": every field resolves to its package default.
type Overrides struct {
	// Charged (customer-facing) rates.
	ManagementFeePct    Override
	ChargedFreightPerKg Override
	ChargedCustomsFee   Override
	ChargedLocalFee     Override

	// Real internal cost rates, never disclosed.
	RealFreightPerKg Override
	RealCustomsCost  Override
	RealLocalCost    Override
	PaymentCostPct   Override

	// Guardrails.
	MinNetMarginPct Override
	MinOrderTotal   Override
	LimitAdjustLow  Override
	LimitAdjustHigh Override
	LimitThreshold  Override

	// Weight policy. A nil WeightTable means "use the built-in table";
	// a non-nil table replaces it wholesale, in the given order.
	DefaultWeightKg Override
	WeightTable     []weight.Rule
}

// Store hands out and replaces the admin pricing record.
// Get must return a consistent record per call — never a torn read across
// fields while an update is in flight. The engine itself never touches
// the store; callers fetch a record, resolve it, and pass the snapshot in.
type Store interface {
	Get(ctx context.Context) (Overrides, error)
	Update(ctx context.Context, ov Overrides) error
}
