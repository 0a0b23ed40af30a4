package utils

import (
	"errors"
	"fmt"
)

// Common application errors used across services.
var (
	ErrReferenceNotFound    = errors.New("REFERENCE_NOT_FOUND")
	ErrDataUnavailable      = errors.New("DATA_UNAVAILABLE")
	ErrInvalidConfiguration = errors.New("INVALID_CONFIGURATION")
	ErrAllocationConflict   = errors.New("ALLOCATION_CONFLICT")
	ErrSequenceExhausted    = errors.New("SEQUENCE_EXHAUSTED")
	ErrQuoteNotFound        = errors.New("QUOTE_NOT_FOUND")
	ErrCustomerNotFound     = errors.New("CUSTOMER_NOT_FOUND")
	ErrInvalidStatus        = errors.New("INVALID_STATUS")
	ErrInvalidPricingMode   = errors.New("INVALID_PRICING_MODE")
	ErrExchangeRateNotFound = errors.New("EXCHANGE_RATE_NOT_FOUND")
	ErrMarginsNotConfigured = errors.New("MARGINS_NOT_CONFIGURED")
	ErrInvalidToken         = errors.New("INVALID_TOKEN")
)

// ErrDuplicateReference marks more than one active reference row for a key.
// It is a data-integrity form of ErrInvalidConfiguration.
var ErrDuplicateReference = fmt.Errorf("DUPLICATE_REFERENCE: %w", ErrInvalidConfiguration)
