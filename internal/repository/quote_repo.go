package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/valvequote/quote_api/internal/models"
	"github.com/valvequote/quote_api/internal/utils"
)

const (
	uniqueViolation       = "23505"
	quoteNumberConstraint = "quotes_quote_number_key"
)

const quoteColumns = `id, quote_number, customer_id, pricing_mode, margin_version, products,
        subtotal, discount_percentage, discount_amount, tax_percentage, tax_amount, total,
        status, created_by, notes, is_archived, created_at, updated_at`

// QuoteRepository handles data access for quotes.
type QuoteRepository struct {
	db *sqlx.DB
}

// NewQuoteRepository creates a new QuoteRepository.
func NewQuoteRepository(db *sqlx.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Create inserts a quote. A collision on quote_number returns
// utils.ErrAllocationConflict so the caller can allocate again.
func (r *QuoteRepository) Create(ctx context.Context, q *models.Quote) error {
	const query = `
        INSERT INTO quotes (quote_number, customer_id, pricing_mode, margin_version, products,
            subtotal, discount_percentage, discount_amount, tax_percentage, tax_amount, total,
            status, created_by, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		q.QuoteNumber,
		q.CustomerID,
		q.PricingMode,
		q.MarginVersion,
		q.Products,
		q.Subtotal,
		q.DiscountPercentage,
		q.DiscountAmount,
		q.TaxPercentage,
		q.TaxAmount,
		q.Total,
		q.Status,
		q.CreatedBy,
		q.Notes,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if isQuoteNumberConflict(err) {
		return utils.ErrAllocationConflict
	}
	return err
}

func isQuoteNumberConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolation && pqErr.Constraint == quoteNumberConstraint
}

// MaxQuoteNumberInRange returns the greatest quote number between lo and hi
// inclusive, or "" when the range is empty. Numbers are fixed width so the
// lexical maximum is the numeric one.
func (r *QuoteRepository) MaxQuoteNumberInRange(ctx context.Context, lo, hi string) (string, error) {
	const q = `SELECT COALESCE(MAX(quote_number), '') FROM quotes WHERE quote_number BETWEEN $1 AND $2`

	stmt, err := r.db.PreparexContext(ctx, q)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	var last string
	if err := stmt.GetContext(ctx, &last, lo, hi); err != nil {
		return "", err
	}
	return last, nil
}

// GetByQuoteNumber finds a quote by its number.
func (r *QuoteRepository) GetByQuoteNumber(ctx context.Context, number string) (*models.Quote, error) {
	q := `SELECT ` + quoteColumns + ` FROM quotes WHERE quote_number = $1`

	var quote models.Quote
	if err := r.db.GetContext(ctx, &quote, q, number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrQuoteNotFound
		}
		return nil, err
	}
	return &quote, nil
}

// List returns quotes matching f, newest first, and the total count.
func (r *QuoteRepository) List(ctx context.Context, f models.QuoteFilter) ([]models.Quote, int, error) {
	page, limit := f.Page, f.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	offset := (page - 1) * limit

	var archived sql.NullBool
	if f.Archived != nil {
		archived = sql.NullBool{Bool: *f.Archived, Valid: true}
	}

	const where = `WHERE ($1 = '' OR status = $1)
        AND ($2 = 0 OR customer_id = $2)
        AND ($3::boolean IS NULL OR is_archived = $3)`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM quotes `+where,
		string(f.Status), f.CustomerID, archived); err != nil {
		return nil, 0, err
	}

	quotes := []models.Quote{}
	listQuery := `SELECT ` + quoteColumns + ` FROM quotes ` + where + `
        ORDER BY created_at DESC, id DESC LIMIT $4 OFFSET $5`
	if err := r.db.SelectContext(ctx, &quotes, listQuery,
		string(f.Status), f.CustomerID, archived, limit, offset); err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

// UpdatePricing stores repriced products, the margin regime and totals.
func (r *QuoteRepository) UpdatePricing(ctx context.Context, q *models.Quote) error {
	const query = `
        UPDATE quotes
        SET products = $1, pricing_mode = $2, margin_version = $3,
            subtotal = $4, discount_percentage = $5, discount_amount = $6,
            tax_percentage = $7, tax_amount = $8, total = $9, updated_at = NOW()
        WHERE quote_number = $10
        RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		q.Products,
		q.PricingMode,
		q.MarginVersion,
		q.Subtotal,
		q.DiscountPercentage,
		q.DiscountAmount,
		q.TaxPercentage,
		q.TaxAmount,
		q.Total,
		q.QuoteNumber,
	).Scan(&q.UpdatedAt)
	return notFound(err)
}

// UpdateStatus records a status transition.
func (r *QuoteRepository) UpdateStatus(ctx context.Context, number string, status models.QuoteStatus) (time.Time, error) {
	const q = `UPDATE quotes SET status = $1, updated_at = NOW() WHERE quote_number = $2 RETURNING updated_at`
	return r.touch(ctx, q, status, number)
}

// SetArchived archives or restores a quote.
func (r *QuoteRepository) SetArchived(ctx context.Context, number string, archived bool) (time.Time, error) {
	const q = `UPDATE quotes SET is_archived = $1, updated_at = NOW() WHERE quote_number = $2 RETURNING updated_at`
	return r.touch(ctx, q, archived, number)
}

// UpdateNotes replaces the free-text notes. A nil notes clears them.
func (r *QuoteRepository) UpdateNotes(ctx context.Context, number string, notes *string) (time.Time, error) {
	const q = `UPDATE quotes SET notes = $1, updated_at = NOW() WHERE quote_number = $2 RETURNING updated_at`
	return r.touch(ctx, q, notes, number)
}

func (r *QuoteRepository) touch(ctx context.Context, query string, value interface{}, number string) (time.Time, error) {
	var updated time.Time
	err := r.db.QueryRowxContext(ctx, query, value, number).Scan(&updated)
	return updated, notFound(err)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return utils.ErrQuoteNotFound
	}
	return err
}
