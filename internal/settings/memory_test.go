package settings_test

import (
	"context"
	"testing"

	"github.com/puentecommerce/puente/internal/settings"
	"github.com/puentecommerce/puente/internal/weight"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_EmptyUntilUpdated(t *testing.T) {
	store := settings.NewMemoryStore()

	ov, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, settings.Overrides{}, ov)
}

func TestMemoryStore_UpdateThenGet(t *testing.T) {
	store := settings.NewMemoryStore()
	ctx := context.Background()

	want := settings.Overrides{
		ChargedCustomsFee: settings.Explicit(decimal.Zero),
		MinNetMarginPct:   settings.Explicit(decimal.NewFromFloat(0.15)),
		WeightTable: []weight.Rule{
			{Keyword: "guitar", WeightKg: decimal.NewFromFloat(3.1)},
		},
	}

	require.NoError(t, store.Update(ctx, want))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// The explicit-zero customs fee survives the round trip as "set".
	assert.True(t, got.ChargedCustomsFee.Set)
	assert.True(t, got.ChargedCustomsFee.Value.IsZero())
}

func TestMemoryStore_GetIsDetachedFromStoredState(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemoryStoreWith(settings.Overrides{
		WeightTable: []weight.Rule{
			{Keyword: "guitar", WeightKg: decimal.NewFromFloat(3.1)},
		},
	})

	got, err := store.Get(ctx)
	require.NoError(t, err)
	got.WeightTable[0].Keyword = "mutated"

	again, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "guitar", again.WeightTable[0].Keyword)
}

func TestMemoryStore_UpdateDetachesFromCallerSlice(t *testing.T) {
	ctx := context.Background()
	store := settings.NewMemoryStore()

	table := []weight.Rule{
		{Keyword: "guitar", WeightKg: decimal.NewFromFloat(3.1)},
	}
	require.NoError(t, store.Update(ctx, settings.Overrides{WeightTable: table}))

	table[0].Keyword = "mutated"

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "guitar", got.WeightTable[0].Keyword)
}
