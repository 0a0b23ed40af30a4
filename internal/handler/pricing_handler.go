package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/valvequote/quote_api/internal/models"
	"github.com/valvequote/quote_api/internal/service"
	"github.com/valvequote/quote_api/internal/utils"
)

// PricingHandler exposes stateless pricing calculations.
type PricingHandler struct {
	pricingService *service.PricingService
}

// NewPricingHandler constructs a PricingHandler.
func NewPricingHandler(pricingService *service.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: pricingService}
}

// SellPriceRequest is the body of POST /v1/pricing/sell-price.
type SellPriceRequest struct {
	Configuration models.ProductConfiguration `json:"configuration"`
	Mode          models.PricingMode          `json:"mode" binding:"required"`
}

// TotalsRequest is the body of POST /v1/pricing/totals.
type TotalsRequest struct {
	LineTotals         []decimal.Decimal `json:"lineTotals"`
	DiscountPercentage decimal.Decimal   `json:"discountPercentage"`
	TaxPercentage      decimal.Decimal   `json:"taxPercentage"`
}

// PriceProduct handles POST /v1/pricing/products
func (h *PricingHandler) PriceProduct(c *gin.Context) {
	var cfg models.ProductConfiguration
	if err := c.ShouldBindJSON(&cfg); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, err := h.pricingService.PriceProduct(c.Request.Context(), cfg)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, 200, "Product priced", product)
}

// SellPrice handles POST /v1/pricing/sell-price
func (h *PricingHandler) SellPrice(c *gin.Context) {
	var req SellPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, margins, err := h.pricingService.PriceWithMargins(c.Request.Context(), req.Configuration, req.Mode)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, 200, "Sell price calculated", gin.H{
		"product":       product,
		"marginVersion": margins.Version,
	})
}

// Totals handles POST /v1/pricing/totals
func (h *PricingHandler) Totals(c *gin.Context) {
	var req TotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	totals, err := h.pricingService.Totals(req.LineTotals, req.DiscountPercentage, req.TaxPercentage)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, 200, "Totals calculated", totals)
}
