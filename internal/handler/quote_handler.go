package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/valvequote/quote_api/internal/models"
	"github.com/valvequote/quote_api/internal/service"
	"github.com/valvequote/quote_api/internal/utils"
)

// QuoteHandler handles quote HTTP endpoints.
type QuoteHandler struct {
	quoteService *service.QuoteService
}

// NewQuoteHandler constructs a QuoteHandler.
func NewQuoteHandler(quoteService *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// CreateQuoteRequest is the body of POST /v1/quotes.
type CreateQuoteRequest struct {
	CustomerID         int                           `json:"customerId" binding:"required"`
	Products           []models.ProductConfiguration `json:"products" binding:"required"`
	PricingMode        *models.PricingMode           `json:"pricingMode"`
	DiscountPercentage decimal.Decimal               `json:"discountPercentage"`
	TaxPercentage      decimal.Decimal               `json:"taxPercentage"`
	Notes              *string                       `json:"notes"`
}

// ReplaceProductsRequest is the body of PUT /v1/quotes/:quoteNumber/products.
type ReplaceProductsRequest struct {
	Products    []models.ProductConfiguration `json:"products" binding:"required"`
	PricingMode *models.PricingMode           `json:"pricingMode"`
}

// AdjustmentsRequest is the body of PATCH /v1/quotes/:quoteNumber/adjustments.
type AdjustmentsRequest struct {
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	TaxPercentage      decimal.Decimal `json:"taxPercentage"`
}

// CreateQuote handles POST /v1/quotes
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	q, err := h.quoteService.CreateQuote(c.Request.Context(), service.CreateQuoteInput{
		CustomerID:         req.CustomerID,
		Products:           req.Products,
		PricingMode:        req.PricingMode,
		DiscountPercentage: req.DiscountPercentage,
		TaxPercentage:      req.TaxPercentage,
		Notes:              req.Notes,
		CreatedBy:          c.GetString("email"),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, 201, "Quote created", q)
}

// ListQuotes handles GET /v1/quotes
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := models.QuoteFilter{
		Status: models.QuoteStatus(c.Query("status")),
		Page:   page,
		Limit:  limit,
	}
	if v := c.Query("customerId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			utils.Error(c, 400, "INVALID_CUSTOMER_ID", "Invalid customer ID")
			return
		}
		filter.CustomerID = id
	}
	if v := c.Query("archived"); v != "" {
		archived, err := strconv.ParseBool(v)
		if err != nil {
			utils.Error(c, 400, "INVALID_REQUEST", "archived must be true or false")
			return
		}
		filter.Archived = &archived
	}

	quotes, total, err := h.quoteService.ListQuotes(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessWithPagination(c, 200, "Quotes retrieved", quotes, page, limit, total)
}

// GetQuote handles GET /v1/quotes/:quoteNumber
// With ?display=foreign the amounts are converted to the customer's currency.
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	number := c.Param("quoteNumber")

	if c.Query("display") == "foreign" {
		view, err := h.quoteService.DisplayQuote(c.Request.Context(), number)
		if err != nil {
			handleError(c, err)
			return
		}
		utils.Success(c, 200, "Quote retrieved", view)
		return
	}

	q, err := h.quoteService.GetQuote(c.Request.Context(), number)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, 200, "Quote retrieved", q)
}

// ReplaceProducts handles PUT /v1/quotes/:quoteNumber/products
func (h *QuoteHandler) ReplaceProducts(c *gin.Context) {
	var req ReplaceProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	q, err := h.quoteService.ReplaceProducts(c.Request.Context(), c.Param("quoteNumber"), req.Products, req.PricingMode)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, 200, "Quote repriced", q)
}

// Recompute handles POST /v1/quotes/:quoteNumber/recompute
func (h *QuoteHandler) Recompute(c *gin.Context) {
	q, err := h.quoteService.Recompute(c.Request.Context(), c.Param("quoteNumber"))
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, 200, "Quote recomputed", q)
}

// Adjust handles PATCH /v1/quotes/:quoteNumber/adjustments
func (h *QuoteHandler) Adjust(c *gin.Context) {
	var req AdjustmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	q, err := h.quoteService.Adjust(c.Request.Context(), c.Param("quoteNumber"), req.DiscountPercentage, req.TaxPercentage)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, 200, "Quote adjusted", q)
}

// UpdateStatus handles PATCH /v1/quotes/:quoteNumber/status
func (h *QuoteHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status models.QuoteStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "status is required")
		return
	}

	q, err := h.quoteService.UpdateStatus(c.Request.Context(), c.Param("quoteNumber"), req.Status)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, 200, "Quote status updated", q)
}

// SetArchived handles PATCH /v1/quotes/:quoteNumber/archive
func (h *QuoteHandler) SetArchived(c *gin.Context) {
	var req struct {
		Archived *bool `json:"archived" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "archived is required")
		return
	}

	q, err := h.quoteService.SetArchived(c.Request.Context(), c.Param("quoteNumber"), *req.Archived)
	if err != nil {
		handleError(c, err)
		return
	}

	message := "Quote restored"
	if q.IsArchived {
		message = "Quote archived"
	}
	utils.Success(c, 200, message, q)
}

// UpdateNotes handles PATCH /v1/quotes/:quoteNumber/notes
func (h *QuoteHandler) UpdateNotes(c *gin.Context) {
	var req struct {
		Notes *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	q, err := h.quoteService.UpdateNotes(c.Request.Context(), c.Param("quoteNumber"), req.Notes)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, 200, "Quote notes updated", q)
}

// NextQuoteNumber handles GET /v1/quote-numbers/next
// The number is a preview and is not reserved.
func (h *QuoteHandler) NextQuoteNumber(c *gin.Context) {
	number, err := h.quoteService.NextQuoteNumber(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, 200, "Next quote number", gin.H{"quoteNumber": number})
}
