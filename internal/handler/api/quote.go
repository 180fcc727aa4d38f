package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/puentecommerce/puente/internal/domain"
	"github.com/puentecommerce/puente/internal/middleware"
	"github.com/puentecommerce/puente/internal/pricing"
	"github.com/puentecommerce/puente/internal/settings"
	"github.com/puentecommerce/puente/internal/telemetry"
	"github.com/shopspring/decimal"
)

// QuoteHandler prices carts and single-item estimates against the
// current admin settings record.
type QuoteHandler struct {
	store    settings.Store
	metrics  *telemetry.PricingMetrics
	logger   *slog.Logger
	validate *validator.Validate
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(store settings.Store, metrics *telemetry.PricingMetrics, logger *slog.Logger) *QuoteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuoteHandler{
		store:    store,
		metrics:  metrics,
		logger:   logger,
		validate: validator.New(),
	}
}

type quoteLineItem struct {
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Quantity         int32           `json:"quantity" validate:"required,min=1"`
	DeclaredWeightKg decimal.Decimal `json:"declared_weight_kg"`
	Descriptor       string          `json:"descriptor" validate:"max=500"`
}

type quoteRequest struct {
	Items []quoteLineItem `json:"items" validate:"dive"`
}

type breakdownLineResponse struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// quoteResponse discloses the breakdown and eligibility. Internal
// figures (net margin, real costs) are deliberately absent.
type quoteResponse struct {
	Breakdown           []breakdownLineResponse `json:"breakdown"`
	TotalFinal          decimal.Decimal         `json:"total_final"`
	TotalWeightKg       decimal.Decimal         `json:"total_weight_kg"`
	WeightImputed       bool                    `json:"weight_imputed"`
	CheckoutEligible    bool                    `json:"checkout_eligible"`
	IneligibilityReason string                  `json:"ineligibility_reason,omitempty"`
}

// CreateQuote handles POST /api/checkout/quote.
// An empty cart is not an error: it yields a zero, ineligible quote.
func (h *QuoteHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context(), h.logger)

	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, logger, domain.WrapError(err, domain.EINVALID, "quote.decode", "malformed request body"))
		return
	}

	if err := h.validateItems(req.Items); err != nil {
		respondError(w, logger, err)
		return
	}

	ov, err := h.store.Get(r.Context())
	if err != nil {
		respondError(w, logger, domain.Internal(err, "quote.settings", "failed to load pricing settings"))
		return
	}

	items := make([]domain.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.LineItem{
			UnitPriceForeign: it.UnitPrice,
			Quantity:         it.Quantity,
			DeclaredWeightKg: it.DeclaredWeightKg,
			Descriptor:       it.Descriptor,
		})
	}

	res := pricing.Quote(items, pricing.Resolve(ov))
	h.metrics.ObserveQuote(res)

	logger.Info("quote computed",
		"items", len(items),
		"total", res.TotalFinal,
		"guardrail_adjusted", res.GuardrailAdjusted,
		"eligible", res.CheckoutEligible,
	)

	respondJSON(w, http.StatusOK, toQuoteResponse(res))
}

// validateItems rejects payloads the engine would misprice: negative
// prices or weights, and quantities below one.
func (h *QuoteHandler) validateItems(items []quoteLineItem) error {
	if err := h.validate.Struct(quoteRequest{Items: items}); err != nil {
		var verr error
		for _, fe := range err.(validator.ValidationErrors) {
			msg := "is invalid"
			switch fe.Tag() {
			case "required", "min":
				msg = "must be at least 1"
			case "max":
				msg = "is too long"
			}
			verr = domain.AddFieldError(verr, fe.Namespace(), msg)
		}
		return verr
	}

	var verr error
	for i, it := range items {
		if it.UnitPrice.IsNegative() {
			verr = domain.AddFieldError(verr, fieldAt(i, "unit_price"), "must not be negative")
		}
		if it.DeclaredWeightKg.IsNegative() {
			verr = domain.AddFieldError(verr, fieldAt(i, "declared_weight_kg"), "must not be negative")
		}
	}
	return verr
}

func fieldAt(i int, name string) string {
	return "items[" + strconv.Itoa(i) + "]." + name
}

func toQuoteResponse(res domain.PricingResult) quoteResponse {
	breakdown := make([]breakdownLineResponse, 0, len(res.Breakdown))
	for _, l := range res.Breakdown {
		breakdown = append(breakdown, breakdownLineResponse{Label: l.Label, Amount: l.Amount})
	}
	return quoteResponse{
		Breakdown:           breakdown,
		TotalFinal:          res.TotalFinal,
		TotalWeightKg:       res.TotalWeightKg,
		WeightImputed:       res.WeightImputed,
		CheckoutEligible:    res.CheckoutEligible,
		IneligibilityReason: res.IneligibilityReason,
	}
}

type estimateResponse struct {
	UnitPrice      decimal.Decimal `json:"unit_price"`
	EstimatedPrice decimal.Decimal `json:"estimated_price"`
}

// Estimate handles GET /api/products/estimate?unit_price=99.90.
// It returns the marked-up display price for a single unit, using the
// same settings snapshot the full quote would use.
func (h *QuoteHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context(), h.logger)

	raw := r.URL.Query().Get("unit_price")
	if raw == "" {
		respondError(w, logger, domain.Invalid("estimate.parse", "unit_price query parameter is required"))
		return
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		respondError(w, logger, domain.Errorf(domain.EINVALID, "estimate.parse", "invalid unit_price: %s", raw))
		return
	}
	if price.IsNegative() {
		respondError(w, logger, domain.Invalid("estimate.parse", "unit_price must not be negative"))
		return
	}

	ov, err := h.store.Get(r.Context())
	if err != nil {
		respondError(w, logger, domain.Internal(err, "estimate.settings", "failed to load pricing settings"))
		return
	}

	estimated := pricing.EstimateUnitPrice(price, pricing.Resolve(ov))
	if h.metrics != nil {
		h.metrics.EstimatesComputed.Inc()
	}

	respondJSON(w, http.StatusOK, estimateResponse{
		UnitPrice:      price,
		EstimatedPrice: estimated.Round(2),
	})
}
