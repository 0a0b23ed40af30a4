package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/valvequote/quote_api/internal/models"
	"github.com/valvequote/quote_api/internal/service"
	"github.com/valvequote/quote_api/internal/utils"
)

// MarginHandler serves margin snapshots.
type MarginHandler struct {
	pricingService *service.PricingService
}

// NewMarginHandler constructs a MarginHandler.
func NewMarginHandler(pricingService *service.PricingService) *MarginHandler {
	return &MarginHandler{pricingService: pricingService}
}

// GetMargins handles GET /v1/margins?version=
func (h *MarginHandler) GetMargins(c *gin.Context) {
	var (
		margins *models.GlobalMargins
		err     error
	)
	if v := c.Query("version"); v != "" {
		version, convErr := strconv.Atoi(v)
		if convErr != nil || version < 1 {
			utils.Error(c, 400, "INVALID_VERSION", "version must be a positive integer")
			return
		}
		margins, err = h.pricingService.MarginsByVersion(c.Request.Context(), version)
	} else {
		margins, err = h.pricingService.CurrentMargins(c.Request.Context())
	}
	if err != nil {
		handleError(c, err)
		return
	}

	utils.Success(c, 200, "Margins retrieved", margins)
}
