package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/valvequote/quote_api/internal/pricing"
	"github.com/valvequote/quote_api/internal/utils"
)

// handleError maps service errors onto the response envelope. Pricing errors
// keep their message so the caller sees which component and key failed.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrQuoteNotFound):
		utils.Error(c, 404, "QUOTE_NOT_FOUND", "Quote not found")
	case errors.Is(err, utils.ErrCustomerNotFound):
		utils.Error(c, 404, "CUSTOMER_NOT_FOUND", "Customer not found")
	case errors.Is(err, utils.ErrInvalidStatus):
		utils.Error(c, 400, "INVALID_STATUS", err.Error())
	case errors.Is(err, utils.ErrInvalidPricingMode):
		utils.Error(c, 400, "INVALID_PRICING_MODE", err.Error())
	case errors.Is(err, utils.ErrDuplicateReference):
		utils.ErrorWithDetails(c, 422, "DUPLICATE_REFERENCE", err.Error(), pricingDetails(err))
	case errors.Is(err, utils.ErrReferenceNotFound):
		utils.ErrorWithDetails(c, 422, "REFERENCE_NOT_FOUND", err.Error(), pricingDetails(err))
	case errors.Is(err, utils.ErrInvalidConfiguration):
		utils.ErrorWithDetails(c, 422, "INVALID_CONFIGURATION", err.Error(), pricingDetails(err))
	case errors.Is(err, utils.ErrMarginsNotConfigured):
		utils.Error(c, 422, "MARGINS_NOT_CONFIGURED", err.Error())
	case errors.Is(err, utils.ErrExchangeRateNotFound):
		utils.Error(c, 422, "EXCHANGE_RATE_NOT_FOUND", err.Error())
	case errors.Is(err, utils.ErrSequenceExhausted):
		utils.Error(c, 409, "SEQUENCE_EXHAUSTED", err.Error())
	case errors.Is(err, utils.ErrAllocationConflict):
		utils.Error(c, 409, "ALLOCATION_CONFLICT", "Could not allocate a quote number, please retry")
	case errors.Is(err, utils.ErrDataUnavailable):
		log.Error().Err(err).Msg("Data store unavailable")
		utils.Error(c, 503, "DATA_UNAVAILABLE", "Pricing data is temporarily unavailable")
	default:
		log.Error().Err(err).Msg("Unhandled error")
		utils.Error(c, 500, "INTERNAL_ERROR", "Internal server error")
	}
}

func pricingDetails(err error) map[string]string {
	var pe *pricing.PricingError
	if !errors.As(err, &pe) {
		return nil
	}
	details := map[string]string{}
	if pe.Component != "" {
		details["component"] = pe.Component
	}
	if pe.Table != "" {
		details["table"] = string(pe.Table)
		details["key"] = pe.Key.String()
	}
	if len(details) == 0 {
		return nil
	}
	return details
}
