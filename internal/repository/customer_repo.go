package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/valvequote/quote_api/internal/models"
	"github.com/valvequote/quote_api/internal/utils"
)

// CustomerRepository provides data access methods for customers table.
type CustomerRepository struct {
	db *sqlx.DB
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// GetByID finds an active customer.
func (r *CustomerRepository) GetByID(ctx context.Context, id int) (*models.Customer, error) {
	const q = `SELECT id, name, currency_code, is_active, created_at FROM customers WHERE id = $1 AND is_active = true`

	var c models.Customer
	if err := r.db.GetContext(ctx, &c, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}
