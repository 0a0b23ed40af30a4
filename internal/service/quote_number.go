package service

import (
	"context"
	"fmt"
	"time"

	"github.com/valvequote/quote_api/internal/pricing"
	"github.com/valvequote/quote_api/internal/utils"
)

// QuoteNumberAllocator derives the next PREFIX-FYCODE-SEQ number from the
// highest number already stored for the current fiscal year. It does not
// reserve the number: two callers may receive the same one, and the store's
// uniqueness check decides which insert wins.
type QuoteNumberAllocator struct {
	store  QuoteNumberSource
	prefix string
	loc    *time.Location
	now    func() time.Time
}

// NewQuoteNumberAllocator constructs a QuoteNumberAllocator. The fiscal year
// is evaluated in loc.
func NewQuoteNumberAllocator(store QuoteNumberSource, prefix string, loc *time.Location) *QuoteNumberAllocator {
	if loc == nil {
		loc = time.UTC
	}
	return &QuoteNumberAllocator{store: store, prefix: prefix, loc: loc, now: time.Now}
}

// Next returns the number following the last one issued this fiscal year.
func (a *QuoteNumberAllocator) Next(ctx context.Context) (string, error) {
	fy := pricing.FiscalYearCode(a.now().In(a.loc))
	lo, hi := pricing.QuoteNumberRange(a.prefix, fy)

	last, err := a.store.MaxQuoteNumberInRange(ctx, lo, hi)
	if err != nil {
		return "", fmt.Errorf("%w: reading last quote number: %v", utils.ErrDataUnavailable, err)
	}
	return pricing.NextQuoteNumber(a.prefix, fy, last)
}
