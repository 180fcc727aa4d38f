package pricing_test

import (
	"testing"

	"github.com/puentecommerce/puente/internal/pricing"
	"github.com/puentecommerce/puente/internal/settings"
	"github.com/puentecommerce/puente/internal/weight"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestResolveField_Absent(t *testing.T) {
	def := d(0.10)

	got, res := pricing.ResolveField(settings.Override{}, def, pricing.PreferDefault)
	assert.True(t, def.Equal(got))
	assert.Equal(t, pricing.ResolvedDefault, res)

	got, res = pricing.ResolveField(settings.Override{}, def, pricing.StrictZero)
	assert.True(t, def.Equal(got))
	assert.Equal(t, pricing.ResolvedDefault, res)
}

func TestResolveField_ExplicitZero_StrictZero(t *testing.T) {
	// An explicit zero on a strict-zero field is a promotional waiver,
	// not a missing value.
	got, res := pricing.ResolveField(settings.Explicit(decimal.Zero), d(40), pricing.StrictZero)

	assert.True(t, got.IsZero())
	assert.Equal(t, pricing.ResolvedExplicitZero, res)
}

func TestResolveField_ExplicitZero_PreferDefault(t *testing.T) {
	// A zero management fee percent would defeat the guardrail; the
	// source system cannot distinguish it from "not configured".
	got, res := pricing.ResolveField(settings.Explicit(decimal.Zero), d(0.10), pricing.PreferDefault)

	assert.True(t, d(0.10).Equal(got))
	assert.Equal(t, pricing.ResolvedDefault, res)
}

func TestResolveField_ExplicitValue(t *testing.T) {
	got, res := pricing.ResolveField(settings.Explicit(d(0.18)), d(0.10), pricing.PreferDefault)

	assert.True(t, d(0.18).Equal(got))
	assert.Equal(t, pricing.ResolvedExplicitValue, res)
}

func TestResolve_PerFieldIndependence(t *testing.T) {
	// A record configuring only one field must not drag the rest away
	// from their defaults — resolution is per field, not per record.
	ov := settings.Overrides{
		ChargedFreightPerKg: settings.Explicit(d(22)),
	}

	s := pricing.Resolve(ov)

	assert.True(t, d(22).Equal(s.ChargedFreightPerKg))
	assert.True(t, d(0.10).Equal(s.ManagementFeePct))
	assert.True(t, d(40).Equal(s.ChargedCustomsFee))
	assert.True(t, d(25).Equal(s.ChargedLocalFee))
	assert.True(t, d(0.12).Equal(s.MinNetMarginPct))
}

func TestResolve_ZeroedFlatFeesSurvive(t *testing.T) {
	ov := settings.Overrides{
		ChargedCustomsFee: settings.Explicit(decimal.Zero),
		ChargedLocalFee:   settings.Explicit(decimal.Zero),
	}

	s := pricing.Resolve(ov)

	assert.True(t, s.ChargedCustomsFee.IsZero())
	assert.True(t, s.ChargedLocalFee.IsZero())
}

func TestResolve_ZeroedRatesFallBack(t *testing.T) {
	ov := settings.Overrides{
		ManagementFeePct: settings.Explicit(decimal.Zero),
		PaymentCostPct:   settings.Explicit(decimal.Zero),
		MinNetMarginPct:  settings.Explicit(decimal.Zero),
	}

	s := pricing.Resolve(ov)

	assert.True(t, d(0.10).Equal(s.ManagementFeePct))
	assert.True(t, d(0.054).Equal(s.PaymentCostPct))
	assert.True(t, d(0.12).Equal(s.MinNetMarginPct))
}

func TestResolve_WeightTable(t *testing.T) {
	// Nil table → built-in table.
	s := pricing.Resolve(settings.Overrides{})
	assert.Equal(t, pricing.DefaultWeightTable(), s.WeightTable)

	// Admin table replaces it wholesale, preserving order.
	table := []weight.Rule{
		{Keyword: "guitar", WeightKg: d(3.1)},
		{Keyword: "ukulele", WeightKg: d(0.9)},
	}
	s = pricing.Resolve(settings.Overrides{WeightTable: table})
	assert.Equal(t, table, s.WeightTable)
}

func TestResolve_SnapshotIsDetached(t *testing.T) {
	table := []weight.Rule{
		{Keyword: "guitar", WeightKg: d(3.1)},
	}
	ov := settings.Overrides{WeightTable: table}

	s := pricing.Resolve(ov)
	table[0].Keyword = "mutated"

	assert.Equal(t, "guitar", s.WeightTable[0].Keyword)
}
