package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boxgym/boxgym-api/internal/dto"
	"github.com/boxgym/boxgym-api/internal/service"
	appErrors "github.com/boxgym/boxgym-api/pkg/errors"
	"github.com/boxgym/boxgym-api/pkg/response"
)

// BillingHandler exposes revenue estimation and pricing management.
type BillingHandler struct {
	billing *service.BillingService
	pricing *service.PricingService
}

// NewBillingHandler creates a new handler.
func NewBillingHandler(billing *service.BillingService, pricing *service.PricingService) *BillingHandler {
	return &BillingHandler{billing: billing, pricing: pricing}
}

// Revenue godoc
// @Summary Monthly revenue estimate
// @Description Estimate monthly revenue across active students, broken down per plan
// @Tags Billing
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /billing/revenue [get]
func (h *BillingHandler) Revenue(c *gin.Context) {
	summary, err := h.billing.EstimateMonthlyRevenue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ListPricing godoc
// @Summary List pricing
// @Description List the effective plan price table
// @Tags Billing
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /billing/pricing [get]
func (h *BillingHandler) ListPricing(c *gin.Context) {
	entries, err := h.pricing.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// ReplacePricing godoc
// @Summary Replace pricing
// @Description Replace the whole plan price table
// @Tags Billing
// @Accept json
// @Produce json
// @Param payload body dto.ReplacePricingRequest true "Pricing payload"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /billing/pricing [put]
func (h *BillingHandler) ReplacePricing(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ReplacePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid pricing payload"))
		return
	}
	if err := h.pricing.Replace(c.Request.Context(), req, claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
