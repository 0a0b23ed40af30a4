package service

import (
	"context"
	"time"

	"github.com/valvequote/quote_api/internal/models"
)

// QuoteStore persists quotes. Create must return utils.ErrAllocationConflict
// when the quote number is already taken.
type QuoteStore interface {
	QuoteNumberSource
	Create(ctx context.Context, q *models.Quote) error
	GetByQuoteNumber(ctx context.Context, number string) (*models.Quote, error)
	List(ctx context.Context, f models.QuoteFilter) ([]models.Quote, int, error)
	UpdatePricing(ctx context.Context, q *models.Quote) error
	UpdateStatus(ctx context.Context, number string, status models.QuoteStatus) (time.Time, error)
	SetArchived(ctx context.Context, number string, archived bool) (time.Time, error)
	UpdateNotes(ctx context.Context, number string, notes *string) (time.Time, error)
}

// QuoteNumberSource answers the greatest issued number within a range.
type QuoteNumberSource interface {
	MaxQuoteNumberInRange(ctx context.Context, lo, hi string) (string, error)
}

// MarginStore serves versioned margin snapshots.
type MarginStore interface {
	Current(ctx context.Context) (*models.GlobalMargins, error)
	ByVersion(ctx context.Context, version int) (*models.GlobalMargins, error)
}

// ExchangeRateStore serves the current rate of a foreign currency.
type ExchangeRateStore interface {
	Latest(ctx context.Context, currencyCode string) (*models.ExchangeRate, error)
}

// CustomerStore looks up quote recipients.
type CustomerStore interface {
	GetByID(ctx context.Context, id int) (*models.Customer, error)
}
