package settings

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/puentecommerce/puente/internal/domain"
	"github.com/puentecommerce/puente/internal/weight"
	"github.com/shopspring/decimal"
)

// PostgresStore persists the pricing record in the single-row
// pricing_settings table. A NULL column is "not configured"; a stored
// zero is an explicit zero. The whole record is written in one statement
// so concurrent quoters never observe a half-applied update.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a Postgres-backed settings store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const getSettingsQuery = `
SELECT management_fee_pct, charged_freight_per_kg, charged_customs_fee, charged_local_fee,
       real_freight_per_kg, real_customs_cost, real_local_cost, payment_cost_pct,
       min_net_margin_pct, min_order_total, limit_adjust_low, limit_adjust_high, limit_threshold,
       default_weight_kg, weight_table
FROM pricing_settings
WHERE id`

// Get loads the admin pricing record. A missing row is not an error:
// it means nothing has been configured yet.
func (s *PostgresStore) Get(ctx context.Context) (Overrides, error) {
	var (
		mgmtPct, chargedFreight, chargedCustoms, chargedLocal pgtype.Numeric
		realFreight, realCustoms, realLocal, paymentPct       pgtype.Numeric
		minMargin, minOrder, limitLow, limitHigh, limitThresh pgtype.Numeric
		defaultKg                                             pgtype.Numeric
		tableJSON                                             []byte
	)

	err := s.pool.QueryRow(ctx, getSettingsQuery).Scan(
		&mgmtPct, &chargedFreight, &chargedCustoms, &chargedLocal,
		&realFreight, &realCustoms, &realLocal, &paymentPct,
		&minMargin, &minOrder, &limitLow, &limitHigh, &limitThresh,
		&defaultKg, &tableJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Overrides{}, nil
		}
		return Overrides{}, domain.Internal(err, "settings.get", "failed to load pricing settings")
	}

	ov := Overrides{
		ManagementFeePct:    overrideFromNumeric(mgmtPct),
		ChargedFreightPerKg: overrideFromNumeric(chargedFreight),
		ChargedCustomsFee:   overrideFromNumeric(chargedCustoms),
		ChargedLocalFee:     overrideFromNumeric(chargedLocal),
		RealFreightPerKg:    overrideFromNumeric(realFreight),
		RealCustomsCost:     overrideFromNumeric(realCustoms),
		RealLocalCost:       overrideFromNumeric(realLocal),
		PaymentCostPct:      overrideFromNumeric(paymentPct),
		MinNetMarginPct:     overrideFromNumeric(minMargin),
		MinOrderTotal:       overrideFromNumeric(minOrder),
		LimitAdjustLow:      overrideFromNumeric(limitLow),
		LimitAdjustHigh:     overrideFromNumeric(limitHigh),
		LimitThreshold:      overrideFromNumeric(limitThresh),
		DefaultWeightKg:     overrideFromNumeric(defaultKg),
	}

	if len(tableJSON) > 0 {
		var rules []weight.Rule
		if err := json.Unmarshal(tableJSON, &rules); err != nil {
			return Overrides{}, domain.Internal(err, "settings.get", "malformed weight table in pricing settings")
		}
		ov.WeightTable = rules
	}

	return ov, nil
}

const updateSettingsQuery = `
INSERT INTO pricing_settings (
    id, management_fee_pct, charged_freight_per_kg, charged_customs_fee, charged_local_fee,
    real_freight_per_kg, real_customs_cost, real_local_cost, payment_cost_pct,
    min_net_margin_pct, min_order_total, limit_adjust_low, limit_adjust_high, limit_threshold,
    default_weight_kg, weight_table, updated_at
) VALUES (true, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now())
ON CONFLICT (id) DO UPDATE SET
    management_fee_pct     = EXCLUDED.management_fee_pct,
    charged_freight_per_kg = EXCLUDED.charged_freight_per_kg,
    charged_customs_fee    = EXCLUDED.charged_customs_fee,
    charged_local_fee      = EXCLUDED.charged_local_fee,
    real_freight_per_kg    = EXCLUDED.real_freight_per_kg,
    real_customs_cost      = EXCLUDED.real_customs_cost,
    real_local_cost        = EXCLUDED.real_local_cost,
    payment_cost_pct       = EXCLUDED.payment_cost_pct,
    min_net_margin_pct     = EXCLUDED.min_net_margin_pct,
    min_order_total        = EXCLUDED.min_order_total,
    limit_adjust_low       = EXCLUDED.limit_adjust_low,
    limit_adjust_high      = EXCLUDED.limit_adjust_high,
    limit_threshold        = EXCLUDED.limit_threshold,
    default_weight_kg      = EXCLUDED.default_weight_kg,
    weight_table           = EXCLUDED.weight_table,
    updated_at             = now()`

// Update replaces the full record in one statement.
func (s *PostgresStore) Update(ctx context.Context, ov Overrides) error {
	var tableJSON any
	if ov.WeightTable != nil {
		b, err := json.Marshal(ov.WeightTable)
		if err != nil {
			return domain.Internal(err, "settings.update", "failed to encode weight table")
		}
		tableJSON = b
	}

	_, err := s.pool.Exec(ctx, updateSettingsQuery,
		numericParam(ov.ManagementFeePct),
		numericParam(ov.ChargedFreightPerKg),
		numericParam(ov.ChargedCustomsFee),
		numericParam(ov.ChargedLocalFee),
		numericParam(ov.RealFreightPerKg),
		numericParam(ov.RealCustomsCost),
		numericParam(ov.RealLocalCost),
		numericParam(ov.PaymentCostPct),
		numericParam(ov.MinNetMarginPct),
		numericParam(ov.MinOrderTotal),
		numericParam(ov.LimitAdjustLow),
		numericParam(ov.LimitAdjustHigh),
		numericParam(ov.LimitThreshold),
		numericParam(ov.DefaultWeightKg),
		tableJSON,
	)
	if err != nil {
		return domain.Internal(err, "settings.update", "failed to save pricing settings")
	}

	return nil
}

// overrideFromNumeric converts a nullable numeric column into an
// Override: NULL stays "not configured", anything else is explicit.
func overrideFromNumeric(n pgtype.Numeric) Override {
	if !n.Valid || n.NaN || n.Int == nil {
		return Override{}
	}
	return Override{Value: decimal.NewFromBigInt(n.Int, n.Exp), Set: true}
}

// numericParam converts an Override into a query argument: unset fields
// are written as NULL.
func numericParam(o Override) any {
	if !o.Set {
		return nil
	}
	return o.Value.String()
}
