package billing

import (
	"net/http"

	"tubelens-api/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"
)

type PlanDTO struct {
	Tier          string  `json:"tier"`
	AnalysesLimit int     `json:"analyses_limit"`
	PriceID       string  `json:"price_id,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	UnitAmount    float64 `json:"unit_amount"` // in major units
	Interval      string  `json:"interval,omitempty"`
}

// GET /plans
//
// Lists every tier with its cap. Paid tiers are enriched from Stripe when it is configured;
// a paid tier without a configured or fetchable price is listed without price details.
func (h *Handler) ListPlans(c *gin.Context) {
	out := []PlanDTO{{Tier: plans.TierFree, AnalysesLimit: h.caps.For(plans.TierFree)}}

	for _, tier := range []string{plans.TierBasic, plans.TierPro} {
		dto := PlanDTO{Tier: tier, AnalysesLimit: h.caps.For(tier)}
		priceID, ok := h.prices.PriceForTier(tier)
		if ok {
			dto.PriceID = priceID
			h.describePrice(&dto)
		}
		out = append(out, dto)
	}

	c.JSON(http.StatusOK, out)
}

func (h *Handler) describePrice(dto *PlanDTO) {
	if h.sc == nil {
		return
	}
	p, err := h.sc.Prices.Get(dto.PriceID, &stripe.PriceParams{})
	if err != nil {
		h.logger.Warn("fetch stripe price failed", zap.String("price_id", dto.PriceID), zap.Error(err))
		return
	}
	dto.Currency = string(p.Currency)
	dto.UnitAmount = float64(p.UnitAmount) / 100.0
	if p.Recurring != nil {
		dto.Interval = string(p.Recurring.Interval)
	}
}
