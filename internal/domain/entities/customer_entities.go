package entities

import (
	"time"

	"github.com/google/uuid"
)

// Customer is an account holder. A customer can own several accounts
// (checking, savings, credit, ...). Email is globally unique.
type Customer struct {
	ID         int64     `json:"id" db:"id"`
	ExternalID uuid.UUID `json:"external_id" db:"external_id"`
	FirstName  string    `json:"first_name" db:"first_name"`
	LastName   string    `json:"last_name" db:"last_name"`
	Email      string    `json:"email" db:"email"`
	KYCStatus  KYCStatus `json:"kyc_status" db:"kyc_status"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// CreateCustomerRequest is the input for creating a customer.
type CreateCustomerRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email,max=255"`
}
