package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/puentecommerce/puente/internal/domain"
	"github.com/puentecommerce/puente/internal/middleware"
	"github.com/puentecommerce/puente/internal/settings"
	"github.com/puentecommerce/puente/internal/telemetry"
	"github.com/puentecommerce/puente/internal/weight"
	"github.com/shopspring/decimal"
)

// SettingsHandler exposes the admin pricing record. The wire format
// keeps the three-state semantics: a JSON null (or absent key) means
// "not configured", an explicit 0 is stored as an explicit zero.
type SettingsHandler struct {
	store   settings.Store
	metrics *telemetry.PricingMetrics
	logger  *slog.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(store settings.Store, metrics *telemetry.PricingMetrics, logger *slog.Logger) *SettingsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsHandler{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

type weightRulePayload struct {
	Keyword  string          `json:"keyword"`
	WeightKg decimal.Decimal `json:"weight_kg"`
}

// settingsPayload is both the GET response and the PUT request body.
// Pointer fields carry the configured/unconfigured distinction through
// JSON: nil marshals to null and unmarshals from null or a missing key.
type settingsPayload struct {
	ManagementFeePct    *decimal.Decimal `json:"management_fee_pct"`
	ChargedFreightPerKg *decimal.Decimal `json:"charged_freight_per_kg"`
	ChargedCustomsFee   *decimal.Decimal `json:"charged_customs_fee"`
	ChargedLocalFee     *decimal.Decimal `json:"charged_local_fee"`

	RealFreightPerKg *decimal.Decimal `json:"real_freight_per_kg"`
	RealCustomsCost  *decimal.Decimal `json:"real_customs_cost"`
	RealLocalCost    *decimal.Decimal `json:"real_local_cost"`
	PaymentCostPct   *decimal.Decimal `json:"payment_cost_pct"`

	MinNetMarginPct *decimal.Decimal `json:"min_net_margin_pct"`
	MinOrderTotal   *decimal.Decimal `json:"min_order_total"`
	LimitAdjustLow  *decimal.Decimal `json:"limit_adjust_low"`
	LimitAdjustHigh *decimal.Decimal `json:"limit_adjust_high"`
	LimitThreshold  *decimal.Decimal `json:"limit_threshold"`

	DefaultWeightKg *decimal.Decimal    `json:"default_weight_kg"`
	WeightTable     []weightRulePayload `json:"weight_table"`
}

// GetSettings handles GET /api/admin/pricing.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context(), h.logger)

	ov, err := h.store.Get(r.Context())
	if err != nil {
		respondError(w, logger, domain.Internal(err, "settings.get", "failed to load pricing settings"))
		return
	}

	respondJSON(w, http.StatusOK, toSettingsPayload(ov))
}

// UpdateSettings handles PUT /api/admin/pricing. The record is replaced
// wholesale: omitting a field unsets it back to the package default.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context(), h.logger)

	var req settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, logger, domain.WrapError(err, domain.EINVALID, "settings.decode", "malformed request body"))
		return
	}

	if err := validateSettings(req); err != nil {
		respondError(w, logger, err)
		return
	}

	ov := toOverrides(req)
	if err := h.store.Update(r.Context(), ov); err != nil {
		respondError(w, logger, domain.Internal(err, "settings.update", "failed to save pricing settings"))
		return
	}

	if h.metrics != nil {
		h.metrics.SettingsUpdates.Inc()
	}
	logger.Info("pricing settings updated")

	respondJSON(w, http.StatusOK, toSettingsPayload(ov))
}

// validateSettings rejects records the resolver would have to guess
// about: negative amounts and rates outside [0, 1).
func validateSettings(p settingsPayload) error {
	var verr error

	amounts := map[string]*decimal.Decimal{
		"charged_freight_per_kg": p.ChargedFreightPerKg,
		"charged_customs_fee":    p.ChargedCustomsFee,
		"charged_local_fee":      p.ChargedLocalFee,
		"real_freight_per_kg":    p.RealFreightPerKg,
		"real_customs_cost":      p.RealCustomsCost,
		"real_local_cost":        p.RealLocalCost,
		"min_order_total":        p.MinOrderTotal,
		"limit_threshold":        p.LimitThreshold,
		"default_weight_kg":      p.DefaultWeightKg,
	}
	for field, v := range amounts {
		if v != nil && v.IsNegative() {
			verr = domain.AddFieldError(verr, field, "must not be negative")
		}
	}

	one := decimal.NewFromInt(1)
	rates := map[string]*decimal.Decimal{
		"management_fee_pct": p.ManagementFeePct,
		"payment_cost_pct":   p.PaymentCostPct,
		"min_net_margin_pct": p.MinNetMarginPct,
		"limit_adjust_low":   p.LimitAdjustLow,
		"limit_adjust_high":  p.LimitAdjustHigh,
	}
	for field, v := range rates {
		if v == nil {
			continue
		}
		if v.IsNegative() || v.GreaterThanOrEqual(one) {
			verr = domain.AddFieldError(verr, field, "must be a fraction in [0, 1)")
		}
	}

	for i, rule := range p.WeightTable {
		if rule.Keyword == "" {
			verr = domain.AddFieldError(verr, fieldAtTable(i, "keyword"), "must not be empty")
		}
		if !rule.WeightKg.IsPositive() {
			verr = domain.AddFieldError(verr, fieldAtTable(i, "weight_kg"), "must be positive")
		}
	}

	return verr
}

func fieldAtTable(i int, name string) string {
	return "weight_table[" + strconv.Itoa(i) + "]." + name
}

func toSettingsPayload(ov settings.Overrides) settingsPayload {
	p := settingsPayload{
		ManagementFeePct:    fromOverride(ov.ManagementFeePct),
		ChargedFreightPerKg: fromOverride(ov.ChargedFreightPerKg),
		ChargedCustomsFee:   fromOverride(ov.ChargedCustomsFee),
		ChargedLocalFee:     fromOverride(ov.ChargedLocalFee),
		RealFreightPerKg:    fromOverride(ov.RealFreightPerKg),
		RealCustomsCost:     fromOverride(ov.RealCustomsCost),
		RealLocalCost:       fromOverride(ov.RealLocalCost),
		PaymentCostPct:      fromOverride(ov.PaymentCostPct),
		MinNetMarginPct:     fromOverride(ov.MinNetMarginPct),
		MinOrderTotal:       fromOverride(ov.MinOrderTotal),
		LimitAdjustLow:      fromOverride(ov.LimitAdjustLow),
		LimitAdjustHigh:     fromOverride(ov.LimitAdjustHigh),
		LimitThreshold:      fromOverride(ov.LimitThreshold),
		DefaultWeightKg:     fromOverride(ov.DefaultWeightKg),
	}
	for _, rule := range ov.WeightTable {
		p.WeightTable = append(p.WeightTable, weightRulePayload{
			Keyword:  rule.Keyword,
			WeightKg: rule.WeightKg,
		})
	}
	return p
}

func toOverrides(p settingsPayload) settings.Overrides {
	ov := settings.Overrides{
		ManagementFeePct:    toOverride(p.ManagementFeePct),
		ChargedFreightPerKg: toOverride(p.ChargedFreightPerKg),
		ChargedCustomsFee:   toOverride(p.ChargedCustomsFee),
		ChargedLocalFee:     toOverride(p.ChargedLocalFee),
		RealFreightPerKg:    toOverride(p.RealFreightPerKg),
		RealCustomsCost:     toOverride(p.RealCustomsCost),
		RealLocalCost:       toOverride(p.RealLocalCost),
		PaymentCostPct:      toOverride(p.PaymentCostPct),
		MinNetMarginPct:     toOverride(p.MinNetMarginPct),
		MinOrderTotal:       toOverride(p.MinOrderTotal),
		LimitAdjustLow:      toOverride(p.LimitAdjustLow),
		LimitAdjustHigh:     toOverride(p.LimitAdjustHigh),
		LimitThreshold:      toOverride(p.LimitThreshold),
		DefaultWeightKg:     toOverride(p.DefaultWeightKg),
	}
	for _, rule := range p.WeightTable {
		ov.WeightTable = append(ov.WeightTable, weight.Rule{
			Keyword:  rule.Keyword,
			WeightKg: rule.WeightKg,
		})
	}
	return ov
}

func fromOverride(o settings.Override) *decimal.Decimal {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}

func toOverride(p *decimal.Decimal) settings.Override {
	if p == nil {
		return settings.Override{}
	}
	return settings.Explicit(*p)
}
