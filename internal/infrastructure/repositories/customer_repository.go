package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/corebank-service/corebank_service/internal/domain/apperrors"
	"github.com/corebank-service/corebank_service/internal/domain/entities"
	"github.com/corebank-service/corebank_service/internal/infrastructure/database"
)

// CustomerRepository persists account holders.
type CustomerRepository struct {
	q database.Querier
}

// NewCustomerRepository creates a customer repository over the given unit of work.
func NewCustomerRepository(q database.Querier) *CustomerRepository {
	return &CustomerRepository{q: q}
}

// Create inserts a new customer. Email uniqueness is enforced by the
// database; violations surface as Conflict.
func (r *CustomerRepository) Create(ctx context.Context, customer *entities.Customer) error {
	if customer.ExternalID == uuid.Nil {
		customer.ExternalID = uuid.New()
	}

	query := `
		INSERT INTO customers (external_id, first_name, last_name, email, kyc_status, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRowxContext(
		ctx,
		query,
		customer.ExternalID,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.KYCStatus,
		customer.IsActive,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.Conflict("customer with email '%s' already exists", customer.Email)
		}
		return fmt.Errorf("create customer: %w", err)
	}

	return nil
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepository) GetByID(ctx context.Context, customerID int64) (*entities.Customer, error) {
	query := `
		SELECT id, external_id, first_name, last_name, email, kyc_status, is_active, created_at, updated_at
		FROM customers
		WHERE id = $1
	`

	var customer entities.Customer
	err := r.q.GetContext(ctx, &customer, query, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("customer %d not found", customerID)
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	return &customer, nil
}

// GetByEmail retrieves a customer by email. Returns (nil, nil) when the
// email is unused.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*entities.Customer, error) {
	query := `
		SELECT id, external_id, first_name, last_name, email, kyc_status, is_active, created_at, updated_at
		FROM customers
		WHERE email = $1
	`

	var customer entities.Customer
	err := r.q.GetContext(ctx, &customer, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by email: %w", err)
	}

	return &customer, nil
}
