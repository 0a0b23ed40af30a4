package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valvequote/quote_api/internal/config"
	"github.com/valvequote/quote_api/internal/models"
	"github.com/valvequote/quote_api/internal/pricing"
	"github.com/valvequote/quote_api/internal/sse"
	"github.com/valvequote/quote_api/internal/utils"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, name, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s = %s, want %s", name, got, want)
}

// catalogue serves one S100 2" class 300 body build.
type catalogue struct {
	entries map[string][]models.ReferenceEntry
}

func (c *catalogue) FindActive(_ context.Context, table models.ReferenceTable, key models.LookupKey) ([]models.ReferenceEntry, error) {
	return c.entries[string(table)+"|"+key.String()], nil
}

func (c *catalogue) FindMaterials(_ context.Context, name string) ([]models.Material, error) {
	switch name {
	case "WCB":
		return []models.Material{{ID: 1, Name: "WCB", PricePerKg: dec("450.00"), IsActive: true}}, nil
	case "SS316":
		return []models.Material{{ID: 2, Name: "SS316", PricePerKg: dec("800.00"), IsActive: true}}, nil
	}
	return nil, nil
}

func newCatalogue() *catalogue {
	c := &catalogue{entries: map[string][]models.ReferenceEntry{}}
	put := func(table models.ReferenceTable, key models.LookupKey, e models.ReferenceEntry) {
		e.IsActive = true
		c.entries[string(table)+"|"+key.String()] = []models.ReferenceEntry{e}
	}
	weight := func(s string) models.ReferenceEntry {
		return models.ReferenceEntry{Weight: decimal.NewNullDecimal(dec(s))}
	}
	put(models.TableBodyWeights, models.BodyKey("S100", "2", "300", "FLANGED"), weight("12.345"))
	put(models.TableBonnetWeights, models.BonnetKey("S100", "2", "300", "STANDARD"), weight("4.2"))
	put(models.TablePlugWeights, models.PlugKey("S100", "2", "300"), weight("1.5"))
	put(models.TableSeatWeights, models.SeatKey("S100", "2", "300"), weight("0.75"))
	put(models.TableStemPrices, models.StemKey("S100", "2", "300", "STD"), models.ReferenceEntry{FixedPrice: decimal.NewNullDecimal(dec("350.00"))})
	return c
}

// valve prices at 9595.25 per unit.
func valve(qty int) models.ProductConfiguration {
	return models.ProductConfiguration{
		ProductType:   "control-valve",
		SeriesID:      "S100",
		Size:          "2",
		Rating:        "300",
		Quantity:      qty,
		EndConnection: "FLANGED",
		BonnetType:    "STANDARD",
		PlugType:      "CONTOURED",
		SeatType:      "METAL",
		StemType:      "STD",
		Materials:     models.ComponentMaterials{Body: "WCB", Bonnet: "WCB", Plug: "SS316", Seat: "SS316"},
	}
}

type fakeMargins struct {
	current *models.GlobalMargins
	err     error
}

func (f *fakeMargins) Current(context.Context) (*models.GlobalMargins, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.current == nil {
		return nil, utils.ErrMarginsNotConfigured
	}
	return f.current, nil
}

func (f *fakeMargins) ByVersion(_ context.Context, version int) (*models.GlobalMargins, error) {
	if f.current == nil || f.current.Version != version {
		return nil, utils.ErrMarginsNotConfigured
	}
	return f.current, nil
}

func standardMargins() *models.GlobalMargins {
	return &models.GlobalMargins{
		Version: 4,
		Standard: models.MarginSettings{
			ManufacturingProfitPercentage: dec("20"),
			BoughtoutProfitPercentage:     dec("10"),
			NegotiationMarginPercentage:   dec("5"),
		},
		Project: models.MarginSettings{
			ManufacturingProfitPercentage: dec("12"),
			BoughtoutProfitPercentage:     dec("6"),
			NegotiationMarginPercentage:   dec("0"),
		},
	}
}

type fakeCustomers map[int]*models.Customer

func (f fakeCustomers) GetByID(_ context.Context, id int) (*models.Customer, error) {
	c, ok := f[id]
	if !ok {
		return nil, utils.ErrCustomerNotFound
	}
	return c, nil
}

type fakeRates map[string]decimal.Decimal

func (f fakeRates) Latest(_ context.Context, code string) (*models.ExchangeRate, error) {
	r, ok := f[code]
	if !ok {
		return nil, utils.ErrExchangeRateNotFound
	}
	return &models.ExchangeRate{CurrencyCode: code, Rate: r}, nil
}

// memQuotes is an in-memory QuoteStore that enforces quote number uniqueness
// the way the quotes table constraint does.
type memQuotes struct {
	mu     sync.Mutex
	byNum  map[string]*models.Quote
	nextID int

	// beforeCreate runs outside the lock ahead of each insert.
	beforeCreate func(q *models.Quote)
	maxErr       error
}

func newMemQuotes() *memQuotes {
	return &memQuotes{byNum: map[string]*models.Quote{}}
}

func (m *memQuotes) MaxQuoteNumberInRange(_ context.Context, lo, hi string) (string, error) {
	if m.maxErr != nil {
		return "", m.maxErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	last := ""
	for n := range m.byNum {
		if n >= lo && n <= hi && n > last {
			last = n
		}
	}
	return last, nil
}

func (m *memQuotes) Create(_ context.Context, q *models.Quote) error {
	if m.beforeCreate != nil {
		m.beforeCreate(q)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.byNum[q.QuoteNumber]; taken {
		return utils.ErrAllocationConflict
	}
	m.nextID++
	q.ID = m.nextID
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	stored := *q
	m.byNum[q.QuoteNumber] = &stored
	return nil
}

func (m *memQuotes) insertRaw(number string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byNum[number] = &models.Quote{QuoteNumber: number}
}

func (m *memQuotes) GetByQuoteNumber(_ context.Context, number string) (*models.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.byNum[number]
	if !ok {
		return nil, utils.ErrQuoteNotFound
	}
	out := *q
	return &out, nil
}

func (m *memQuotes) List(_ context.Context, f models.QuoteFilter) ([]models.Quote, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Quote
	for _, q := range m.byNum {
		if f.Status != "" && q.Status != f.Status {
			continue
		}
		out = append(out, *q)
	}
	return out, len(out), nil
}

func (m *memQuotes) UpdatePricing(_ context.Context, q *models.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byNum[q.QuoteNumber]; !ok {
		return utils.ErrQuoteNotFound
	}
	stored := *q
	m.byNum[q.QuoteNumber] = &stored
	return nil
}

func (m *memQuotes) mutate(number string, fn func(*models.Quote)) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.byNum[number]
	if !ok {
		return time.Time{}, utils.ErrQuoteNotFound
	}
	fn(q)
	q.UpdatedAt = time.Now()
	return q.UpdatedAt, nil
}

func (m *memQuotes) UpdateStatus(_ context.Context, number string, status models.QuoteStatus) (time.Time, error) {
	return m.mutate(number, func(q *models.Quote) { q.Status = status })
}

func (m *memQuotes) SetArchived(_ context.Context, number string, archived bool) (time.Time, error) {
	return m.mutate(number, func(q *models.Quote) { q.IsArchived = archived })
}

func (m *memQuotes) UpdateNotes(_ context.Context, number string, notes *string) (time.Time, error) {
	return m.mutate(number, func(q *models.Quote) { q.Notes = notes })
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sse.EventType
}

func (r *recordingNotifier) add(e sse.EventType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingNotifier) NotifyQuoteCreated(*models.Quote)       { r.add(sse.EventQuoteCreated) }
func (r *recordingNotifier) NotifyQuoteStatusChanged(*models.Quote) { r.add(sse.EventQuoteStatusChanged) }
func (r *recordingNotifier) NotifyQuoteRepriced(*models.Quote)      { r.add(sse.EventQuoteRepriced) }
func (r *recordingNotifier) NotifyQuoteArchived(*models.Quote)      { r.add(sse.EventQuoteArchived) }

type fixture struct {
	svc      *QuoteService
	quotes   *memQuotes
	margins  *fakeMargins
	alloc    *QuoteNumberAllocator
	notifier *recordingNotifier
}

// march2026 falls in fiscal year 2025-26.
var march2026 = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newFixture(attempts int) *fixture {
	quotes := newMemQuotes()
	margins := &fakeMargins{current: standardMargins()}
	alloc := NewQuoteNumberAllocator(quotes, "VQ", time.UTC)
	alloc.now = func() time.Time { return march2026 }
	notifier := &recordingNotifier{}

	pricingSvc := NewPricingService(pricing.NewEngine(newCatalogue()), margins)
	customers := fakeCustomers{
		1: {ID: 1, Name: "Domestic Refinery", CurrencyCode: "INR", IsActive: true},
		2: {ID: 2, Name: "Gulf Petrochem", CurrencyCode: "USD", IsActive: true},
		3: {ID: 3, Name: "Euro Utilities", CurrencyCode: "EUR", IsActive: true},
		4: {ID: 4, Name: "Coastal Fertilisers", CurrencyCode: "inr", IsActive: true},
		5: {ID: 5, Name: "Gulf Pipelines", CurrencyCode: "usd", IsActive: true},
	}
	rates := fakeRates{"USD": dec("0.012")}
	cfg := &config.QuoteConfig{NumberPrefix: "VQ", TimeZone: time.UTC, DomesticCurrency: "INR", AllocationAttempts: attempts}

	return &fixture{
		svc:      NewQuoteService(pricingSvc, quotes, customers, rates, alloc, notifier, cfg),
		quotes:   quotes,
		margins:  margins,
		alloc:    alloc,
		notifier: notifier,
	}
}

func costInput(customerID int) CreateQuoteInput {
	return CreateQuoteInput{
		CustomerID:         customerID,
		Products:           []models.ProductConfiguration{valve(2)},
		DiscountPercentage: dec("10"),
		TaxPercentage:      dec("18"),
		CreatedBy:          "sales@example.com",
	}
}

func TestCreateQuote_CostBasis(t *testing.T) {
	f := newFixture(3)

	q, err := f.svc.CreateQuote(context.Background(), costInput(1))
	require.NoError(t, err)

	assert.Equal(t, "VQ-2526-0001", q.QuoteNumber)
	assert.Equal(t, models.QuoteStatusDraft, q.Status)
	assert.Nil(t, q.PricingMode)
	assert.Nil(t, q.MarginVersion)
	require.Len(t, q.Products, 1)
	assert.Nil(t, q.Products[0].Sell)

	assertMoney(t, "subtotal", "19190.50", q.Subtotal)
	assertMoney(t, "discount", "1919.05", q.DiscountAmount)
	assertMoney(t, "tax", "3108.86", q.TaxAmount)
	assertMoney(t, "total", "20380.31", q.Total)

	assert.Equal(t, []sse.EventType{sse.EventQuoteCreated}, f.notifier.events)
}

func TestCreateQuote_WithPricingMode(t *testing.T) {
	f := newFixture(3)
	mode := models.PricingModeStandard
	in := costInput(1)
	in.PricingMode = &mode
	in.DiscountPercentage = decimal.Zero
	in.TaxPercentage = decimal.Zero

	q, err := f.svc.CreateQuote(context.Background(), in)
	require.NoError(t, err)

	require.NotNil(t, q.MarginVersion)
	assert.Equal(t, 4, *q.MarginVersion)
	require.NotNil(t, q.Products[0].Sell)
	assertMoney(t, "unit sell", "12090.02", q.Products[0].Sell.UnitSellPrice)
	assertMoney(t, "subtotal", "24180.04", q.Subtotal)
	assertMoney(t, "total", "24180.04", q.Total)
	assertMoney(t, "cost basis kept", "19190.50", q.Products[0].LineTotal)
}

func TestCreateQuote_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateQuoteInput, *fixture)
		want   error
	}{
		{"unknown customer", func(in *CreateQuoteInput, _ *fixture) { in.CustomerID = 99 }, utils.ErrCustomerNotFound},
		{"no products", func(in *CreateQuoteInput, _ *fixture) { in.Products = nil }, utils.ErrInvalidConfiguration},
		{"discount above 100", func(in *CreateQuoteInput, _ *fixture) { in.DiscountPercentage = dec("100.5") }, utils.ErrInvalidConfiguration},
		{"missing reference row", func(in *CreateQuoteInput, _ *fixture) { in.Products[0].BonnetType = "EXTENDED" }, utils.ErrReferenceNotFound},
		{"unknown mode", func(in *CreateQuoteInput, _ *fixture) {
			mode := models.PricingMode("wholesale")
			in.PricingMode = &mode
		}, utils.ErrInvalidPricingMode},
		{"margins missing", func(in *CreateQuoteInput, f *fixture) {
			mode := models.PricingModeProject
			in.PricingMode = &mode
			f.margins.current = nil
		}, utils.ErrMarginsNotConfigured},
		{"margins unreachable", func(in *CreateQuoteInput, f *fixture) {
			mode := models.PricingModeProject
			in.PricingMode = &mode
			f.margins.err = errors.New("connection reset")
		}, utils.ErrDataUnavailable},
		{"number store unreachable", func(_ *CreateQuoteInput, f *fixture) {
			f.quotes.maxErr = errors.New("connection reset")
		}, utils.ErrDataUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(3)
			in := costInput(1)
			tt.mutate(&in, f)

			q, err := f.svc.CreateQuote(context.Background(), in)
			require.Error(t, err)
			assert.Nil(t, q)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Empty(t, f.quotes.byNum, "nothing is stored on failure")
			assert.Empty(t, f.notifier.events)
		})
	}
}

func TestCreateQuote_SequentialNumbersHaveNoGaps(t *testing.T) {
	f := newFixture(3)
	for i := 1; i <= 5; i++ {
		q, err := f.svc.CreateQuote(context.Background(), costInput(1))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("VQ-2526-%04d", i), q.QuoteNumber)
	}
}

func TestCreateQuote_RetriesAfterConflict(t *testing.T) {
	f := newFixture(3)
	raced := false
	f.quotes.beforeCreate = func(q *models.Quote) {
		if !raced {
			raced = true
			f.quotes.insertRaw(q.QuoteNumber)
		}
	}

	q, err := f.svc.CreateQuote(context.Background(), costInput(1))
	require.NoError(t, err)
	assert.Equal(t, "VQ-2526-0002", q.QuoteNumber)
}

func TestCreateQuote_GivesUpAfterConfiguredAttempts(t *testing.T) {
	f := newFixture(2)
	f.quotes.beforeCreate = func(q *models.Quote) {
		f.quotes.insertRaw(q.QuoteNumber)
	}

	_, err := f.svc.CreateQuote(context.Background(), costInput(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrAllocationConflict))
	assert.Len(t, f.quotes.byNum, 2, "one number lost per attempt")
}

func TestCreateQuote_ConcurrentCallersGetDistinctNumbers(t *testing.T) {
	const callers = 12
	f := newFixture(callers)

	var wg sync.WaitGroup
	numbers := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q, err := f.svc.CreateQuote(context.Background(), costInput(1))
			errs[i] = err
			if err == nil {
				numbers[i] = q.QuoteNumber
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	sort.Strings(numbers)
	for i, n := range numbers {
		assert.Equal(t, fmt.Sprintf("VQ-2526-%04d", i+1), n)
	}
}

func TestQuoteNumberAllocator_FiscalYearBoundary(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	quotes := newMemQuotes()
	quotes.insertRaw("VQ-2526-0041")
	alloc := NewQuoteNumberAllocator(quotes, "VQ", ist)

	// 2026-03-31 23:30 IST is still the old fiscal year although UTC says 18:00.
	alloc.now = func() time.Time { return time.Date(2026, 3, 31, 18, 0, 0, 0, time.UTC) }
	n, err := alloc.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "VQ-2526-0042", n)

	// 2026-04-01 00:10 IST starts a new year at 0001.
	alloc.now = func() time.Time { return time.Date(2026, 3, 31, 18, 40, 0, 0, time.UTC) }
	n, err = alloc.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "VQ-2627-0001", n)
}

func TestQuoteNumberAllocator_Exhausted(t *testing.T) {
	quotes := newMemQuotes()
	quotes.insertRaw("VQ-2526-9999")
	alloc := NewQuoteNumberAllocator(quotes, "VQ", time.UTC)
	alloc.now = func() time.Time { return march2026 }

	_, err := alloc.Next(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrSequenceExhausted))
}

func TestDisplayQuote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(3)

	domestic, err := f.svc.CreateQuote(ctx, costInput(1))
	require.NoError(t, err)
	foreign, err := f.svc.CreateQuote(ctx, costInput(2))
	require.NoError(t, err)
	noRate, err := f.svc.CreateQuote(ctx, costInput(3))
	require.NoError(t, err)

	t.Run("domestic is unchanged", func(t *testing.T) {
		view, err := f.svc.DisplayQuote(ctx, domestic.QuoteNumber)
		require.NoError(t, err)
		assert.Equal(t, "INR", view.Currency)
		assert.Nil(t, view.ExchangeRate)
		assertMoney(t, "total", "20380.31", view.Totals.Total)
		assert.Equal(t, "INR 20,380.31", view.Formatted["total"])
	})

	t.Run("foreign is converted for display only", func(t *testing.T) {
		view, err := f.svc.DisplayQuote(ctx, foreign.QuoteNumber)
		require.NoError(t, err)
		assert.Equal(t, "USD", view.Currency)
		require.NotNil(t, view.ExchangeRate)
		assertMoney(t, "total", "244.56372", view.Totals.Total)
		assert.Equal(t, "USD 244.56", view.Formatted["total"])
		assert.Equal(t, "USD 230.29", view.Formatted["subtotal"])
		assertMoney(t, "unit cost", "115.143", view.Products[0].UnitCost)

		stored, err := f.svc.GetQuote(ctx, foreign.QuoteNumber)
		require.NoError(t, err)
		assertMoney(t, "stored total", "20380.31", stored.Total)
		assertMoney(t, "stored unit cost", "9595.25", stored.Products[0].UnitCost)
	})

	t.Run("currency codes compare case-insensitively", func(t *testing.T) {
		lowerDomestic, err := f.svc.CreateQuote(ctx, costInput(4))
		require.NoError(t, err)
		view, err := f.svc.DisplayQuote(ctx, lowerDomestic.QuoteNumber)
		require.NoError(t, err)
		assert.Equal(t, "INR", view.Currency)
		assert.Nil(t, view.ExchangeRate)

		lowerForeign, err := f.svc.CreateQuote(ctx, costInput(5))
		require.NoError(t, err)
		view, err = f.svc.DisplayQuote(ctx, lowerForeign.QuoteNumber)
		require.NoError(t, err)
		assert.Equal(t, "USD", view.Currency)
		assert.Equal(t, "USD 244.56", view.Formatted["total"])
	})

	t.Run("missing rate", func(t *testing.T) {
		_, err := f.svc.DisplayQuote(ctx, noRate.QuoteNumber)
		assert.True(t, errors.Is(err, utils.ErrExchangeRateNotFound))
	})

	t.Run("unknown quote", func(t *testing.T) {
		_, err := f.svc.DisplayQuote(ctx, "VQ-2526-0999")
		assert.True(t, errors.Is(err, utils.ErrQuoteNotFound))
	})
}

func TestQuoteLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(3)

	q, err := f.svc.CreateQuote(ctx, costInput(1))
	require.NoError(t, err)

	t.Run("adjust keeps products", func(t *testing.T) {
		adjusted, err := f.svc.Adjust(ctx, q.QuoteNumber, decimal.Zero, decimal.Zero)
		require.NoError(t, err)
		assertMoney(t, "total", "19190.50", adjusted.Total)

		_, err = f.svc.Adjust(ctx, q.QuoteNumber, decimal.Zero, dec("-1"))
		assert.True(t, errors.Is(err, utils.ErrInvalidConfiguration))
	})

	t.Run("replace products with a mode", func(t *testing.T) {
		mode := models.PricingModeStandard
		replaced, err := f.svc.ReplaceProducts(ctx, q.QuoteNumber, []models.ProductConfiguration{valve(1)}, &mode)
		require.NoError(t, err)
		require.NotNil(t, replaced.PricingMode)
		assertMoney(t, "subtotal", "12090.02", replaced.Subtotal)
	})

	t.Run("recompute picks up new margins", func(t *testing.T) {
		f.margins.current.Version = 5
		f.margins.current.Standard.NegotiationMarginPercentage = decimal.Zero

		recomputed, err := f.svc.Recompute(ctx, q.QuoteNumber)
		require.NoError(t, err)
		require.NotNil(t, recomputed.MarginVersion)
		assert.Equal(t, 5, *recomputed.MarginVersion)
		assertMoney(t, "subtotal", "11514.30", recomputed.Subtotal)
	})

	t.Run("status", func(t *testing.T) {
		updated, err := f.svc.UpdateStatus(ctx, q.QuoteNumber, models.QuoteStatusSent)
		require.NoError(t, err)
		assert.Equal(t, models.QuoteStatusSent, updated.Status)

		_, err = f.svc.UpdateStatus(ctx, q.QuoteNumber, "lost")
		assert.True(t, errors.Is(err, utils.ErrInvalidStatus))

		_, err = f.svc.UpdateStatus(ctx, "VQ-2526-0404", models.QuoteStatusSent)
		assert.True(t, errors.Is(err, utils.ErrQuoteNotFound))
	})

	t.Run("archive and notes", func(t *testing.T) {
		archived, err := f.svc.SetArchived(ctx, q.QuoteNumber, true)
		require.NoError(t, err)
		assert.True(t, archived.IsArchived)

		blank := "   "
		noted, err := f.svc.UpdateNotes(ctx, q.QuoteNumber, &blank)
		require.NoError(t, err)
		assert.Nil(t, noted.Notes)
	})

	t.Run("list validates status", func(t *testing.T) {
		_, _, err := f.svc.ListQuotes(ctx, models.QuoteFilter{Status: "pending"})
		assert.True(t, errors.Is(err, utils.ErrInvalidStatus))

		list, total, err := f.svc.ListQuotes(ctx, models.QuoteFilter{Status: models.QuoteStatusSent})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Len(t, list, 1)
	})

	assert.Equal(t, []sse.EventType{
		sse.EventQuoteCreated,
		sse.EventQuoteRepriced,
		sse.EventQuoteRepriced,
		sse.EventQuoteRepriced,
		sse.EventQuoteStatusChanged,
		sse.EventQuoteArchived,
	}, f.notifier.events)
}

func TestPricingService_PriceWithMargins(t *testing.T) {
	margins := &fakeMargins{current: standardMargins()}
	svc := NewPricingService(pricing.NewEngine(newCatalogue()), margins)

	p, m, err := svc.PriceWithMargins(context.Background(), valve(2), models.PricingModeStandard)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Version)
	assertMoney(t, "line sell", "24180.04", p.Sell.LineSellTotal)

	_, _, err = svc.PriceWithMargins(context.Background(), valve(2), "retail")
	assert.True(t, errors.Is(err, utils.ErrInvalidPricingMode))

	_, err = svc.MarginsByVersion(context.Background(), 1)
	assert.True(t, errors.Is(err, utils.ErrMarginsNotConfigured))
}
