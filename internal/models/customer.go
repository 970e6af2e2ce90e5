package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID             int             `json:"id"`
	UserID         int             `json:"-"`
	Name           string          `json:"name"`
	ContactNumber  string          `json:"contact_number"`
	Email          string          `json:"email,omitempty"`
	Address        string          `json:"address"`
	AccountBalance decimal.Decimal `json:"account_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CreateCustomerRequest represents the request body for creating a customer
type CreateCustomerRequest struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

// UpdateCustomerRequest represents the request body for updating a customer.
// The account balance is not settable here; it is maintained by the ledger
// service and repaired via the recalculate endpoint.
type UpdateCustomerRequest struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}
