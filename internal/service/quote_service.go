package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/valvequote/quote_api/internal/config"
	"github.com/valvequote/quote_api/internal/models"
	"github.com/valvequote/quote_api/internal/pricing"
	"github.com/valvequote/quote_api/internal/sse"
	"github.com/valvequote/quote_api/internal/utils"
)

// CreateQuoteInput carries everything needed to compose a new quote.
type CreateQuoteInput struct {
	CustomerID         int
	Products           []models.ProductConfiguration
	PricingMode        *models.PricingMode
	DiscountPercentage decimal.Decimal
	TaxPercentage      decimal.Decimal
	Notes              *string
	CreatedBy          string
}

// QuoteDisplay is a presentation copy of a quote in the customer's currency.
// The stored quote is never modified by conversion.
type QuoteDisplay struct {
	Quote        *models.Quote         `json:"quote"`
	Currency     string                `json:"currency"`
	ExchangeRate *decimal.Decimal      `json:"exchangeRate,omitempty"`
	Products     []models.QuoteProduct `json:"products"`
	Totals       pricing.QuoteTotals   `json:"totals"`
	Formatted    map[string]string     `json:"formatted"`
}

// QuoteService composes, stores and maintains quotes.
type QuoteService struct {
	pricing   *PricingService
	quotes    QuoteStore
	customers CustomerStore
	rates     ExchangeRateStore
	allocator *QuoteNumberAllocator
	notifier  sse.QuoteNotifier

	domesticCurrency string
	attempts         int
}

// NewQuoteService constructs a QuoteService.
func NewQuoteService(
	pricingSvc *PricingService,
	quotes QuoteStore,
	customers CustomerStore,
	rates ExchangeRateStore,
	allocator *QuoteNumberAllocator,
	notifier sse.QuoteNotifier,
	cfg *config.QuoteConfig,
) *QuoteService {
	if notifier == nil {
		notifier = &sse.NopNotifier{}
	}
	attempts := cfg.AllocationAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &QuoteService{
		pricing:          pricingSvc,
		quotes:           quotes,
		customers:        customers,
		rates:            rates,
		allocator:        allocator,
		notifier:         notifier,
		domesticCurrency: strings.ToUpper(cfg.DomesticCurrency),
		attempts:         attempts,
	}
}

// NextQuoteNumber previews the number the next quote would receive.
func (s *QuoteService) NextQuoteNumber(ctx context.Context) (string, error) {
	return s.allocator.Next(ctx)
}

// CreateQuote prices every product, aggregates the totals and stores the quote
// under a freshly allocated number. A number taken by a concurrent writer is
// re-allocated up to the configured number of attempts.
func (s *QuoteService) CreateQuote(ctx context.Context, in CreateQuoteInput) (*models.Quote, error) {
	if _, err := s.customer(ctx, in.CustomerID); err != nil {
		return nil, err
	}
	if err := pricing.ValidatePercentages(in.DiscountPercentage, in.TaxPercentage); err != nil {
		return nil, err
	}

	products, version, err := s.pricing.PriceQuote(ctx, in.Products, in.PricingMode)
	if err != nil {
		return nil, err
	}

	q := &models.Quote{
		CustomerID:    in.CustomerID,
		PricingMode:   in.PricingMode,
		MarginVersion: version,
		Products:      products,
		Status:        models.QuoteStatusDraft,
		CreatedBy:     in.CreatedBy,
		Notes:         in.Notes,
	}
	pricing.ApplyTotals(q, pricing.AggregateQuote(products, in.DiscountPercentage, in.TaxPercentage))

	for attempt := 1; attempt <= s.attempts; attempt++ {
		number, err := s.allocator.Next(ctx)
		if err != nil {
			return nil, err
		}
		q.QuoteNumber = number

		err = s.quotes.Create(ctx, q)
		if err == nil {
			log.Info().
				Str("quote_number", q.QuoteNumber).
				Int("customer_id", q.CustomerID).
				Str("total", q.Total.StringFixed(2)).
				Int("attempt", attempt).
				Msg("quote created")
			s.notifier.NotifyQuoteCreated(q)
			return q, nil
		}
		if !errors.Is(err, utils.ErrAllocationConflict) {
			return nil, err
		}
		log.Warn().Str("quote_number", number).Int("attempt", attempt).Msg("quote number taken, allocating again")
	}

	return nil, fmt.Errorf("%w: no free quote number after %d attempts", utils.ErrAllocationConflict, s.attempts)
}

// GetQuote returns a stored quote in domestic currency.
func (s *QuoteService) GetQuote(ctx context.Context, number string) (*models.Quote, error) {
	return s.quotes.GetByQuoteNumber(ctx, number)
}

// DisplayQuote returns the quote converted into the customer's currency.
// Domestic customers get the stored amounts unchanged.
func (s *QuoteService) DisplayQuote(ctx context.Context, number string) (*QuoteDisplay, error) {
	q, err := s.quotes.GetByQuoteNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	c, err := s.customer(ctx, q.CustomerID)
	if err != nil {
		return nil, err
	}

	view := &QuoteDisplay{Quote: q, Currency: s.domesticCurrency}
	if c.IsDomestic(s.domesticCurrency) {
		view.Products = q.Products
		view.Totals = pricing.TotalsOf(q)
	} else {
		code := strings.ToUpper(strings.TrimSpace(c.CurrencyCode))
		rate, err := s.rates.Latest(ctx, code)
		if err != nil {
			if !errors.Is(err, utils.ErrExchangeRateNotFound) {
				err = fmt.Errorf("%w: loading exchange rate: %v", utils.ErrDataUnavailable, err)
			}
			return nil, err
		}
		if err := pricing.ValidateRate(rate.Rate); err != nil {
			return nil, err
		}
		view.Currency = code
		view.ExchangeRate = &rate.Rate
		view.Products, view.Totals = pricing.ConvertQuote(q, rate.Rate)
	}

	view.Formatted, err = formatTotals(view.Totals, view.Currency)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func formatTotals(t pricing.QuoteTotals, currency string) (map[string]string, error) {
	out := make(map[string]string, 5)
	for name, amount := range map[string]decimal.Decimal{
		"subtotal":       t.Subtotal,
		"discountAmount": t.DiscountAmount,
		"taxableAmount":  t.TaxableAmount,
		"taxAmount":      t.TaxAmount,
		"total":          t.Total,
	} {
		s, err := pricing.FormatAmount(amount, currency)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", utils.ErrInvalidConfiguration, err)
		}
		out[name] = s
	}
	return out, nil
}

// ListQuotes returns a filtered page of quotes and the total match count.
func (s *QuoteService) ListQuotes(ctx context.Context, f models.QuoteFilter) ([]models.Quote, int, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: %q", utils.ErrInvalidStatus, f.Status)
	}
	return s.quotes.List(ctx, f)
}

// ReplaceProducts reprices a quote from new configurations. A nil mode keeps
// the quote's current pricing mode. Discount and tax are kept.
func (s *QuoteService) ReplaceProducts(ctx context.Context, number string, cfgs []models.ProductConfiguration, mode *models.PricingMode) (*models.Quote, error) {
	q, err := s.quotes.GetByQuoteNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if mode == nil {
		mode = q.PricingMode
	}
	return s.reprice(ctx, q, cfgs, mode)
}

// Recompute reprices the stored configurations against the current reference
// data and margins.
func (s *QuoteService) Recompute(ctx context.Context, number string) (*models.Quote, error) {
	q, err := s.quotes.GetByQuoteNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	cfgs := make([]models.ProductConfiguration, len(q.Products))
	for i := range q.Products {
		cfgs[i] = q.Products[i].Configuration
	}
	return s.reprice(ctx, q, cfgs, q.PricingMode)
}

func (s *QuoteService) reprice(ctx context.Context, q *models.Quote, cfgs []models.ProductConfiguration, mode *models.PricingMode) (*models.Quote, error) {
	products, version, err := s.pricing.PriceQuote(ctx, cfgs, mode)
	if err != nil {
		return nil, err
	}
	q.Products = products
	q.PricingMode = mode
	q.MarginVersion = version
	pricing.ApplyTotals(q, pricing.AggregateQuote(products, q.DiscountPercentage, q.TaxPercentage))

	if err := s.quotes.UpdatePricing(ctx, q); err != nil {
		return nil, err
	}
	log.Info().Str("quote_number", q.QuoteNumber).Str("total", q.Total.StringFixed(2)).Msg("quote repriced")
	s.notifier.NotifyQuoteRepriced(q)
	return q, nil
}

// Adjust changes discount and tax and recomputes the totals from the stored
// line totals. Products are not repriced.
func (s *QuoteService) Adjust(ctx context.Context, number string, discountPct, taxPct decimal.Decimal) (*models.Quote, error) {
	if err := pricing.ValidatePercentages(discountPct, taxPct); err != nil {
		return nil, err
	}
	q, err := s.quotes.GetByQuoteNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	pricing.ApplyTotals(q, pricing.AggregateQuote(q.Products, discountPct, taxPct))
	if err := s.quotes.UpdatePricing(ctx, q); err != nil {
		return nil, err
	}
	s.notifier.NotifyQuoteRepriced(q)
	return q, nil
}

// UpdateStatus records a transition. Any known status may follow any other.
func (s *QuoteService) UpdateStatus(ctx context.Context, number string, status models.QuoteStatus) (*models.Quote, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", utils.ErrInvalidStatus, status)
	}
	q, err := s.quotes.GetByQuoteNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	updated, err := s.quotes.UpdateStatus(ctx, number, status)
	if err != nil {
		return nil, err
	}
	log.Info().Str("quote_number", number).Str("from", string(q.Status)).Str("to", string(status)).Msg("quote status changed")
	q.Status = status
	q.UpdatedAt = updated
	s.notifier.NotifyQuoteStatusChanged(q)
	return q, nil
}

// SetArchived archives or restores a quote.
func (s *QuoteService) SetArchived(ctx context.Context, number string, archived bool) (*models.Quote, error) {
	q, err := s.quotes.GetByQuoteNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	updated, err := s.quotes.SetArchived(ctx, number, archived)
	if err != nil {
		return nil, err
	}
	q.IsArchived = archived
	q.UpdatedAt = updated
	s.notifier.NotifyQuoteArchived(q)
	return q, nil
}

// UpdateNotes replaces the quote's notes; blank notes clear them.
func (s *QuoteService) UpdateNotes(ctx context.Context, number string, notes *string) (*models.Quote, error) {
	if notes != nil && strings.TrimSpace(*notes) == "" {
		notes = nil
	}
	q, err := s.quotes.GetByQuoteNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	updated, err := s.quotes.UpdateNotes(ctx, number, notes)
	if err != nil {
		return nil, err
	}
	q.Notes = notes
	q.UpdatedAt = updated
	return q, nil
}

func (s *QuoteService) customer(ctx context.Context, id int) (*models.Customer, error) {
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrCustomerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: loading customer: %v", utils.ErrDataUnavailable, err)
	}
	return c, nil
}
