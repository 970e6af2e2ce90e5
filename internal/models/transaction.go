package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionCredit || t == TransactionDebit
}

type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "cash"
	PaymentModeUPI    PaymentMode = "upi"
	PaymentModeCard   PaymentMode = "card"
	PaymentModeCheque PaymentMode = "cheque"
	PaymentModeOther  PaymentMode = "other"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentModeCash, PaymentModeUPI, PaymentModeCard, PaymentModeCheque, PaymentModeOther:
		return true
	}
	return false
}

// Transaction is a single credit or debit against a customer. Amount is
// always stored positive; the sign of its impact on the customer balance is
// derived from Type.
type Transaction struct {
	ID           int             `json:"id"`
	CustomerID   int             `json:"customer_id"`
	CustomerName string          `json:"customer_name,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Type         TransactionType `json:"type"`
	PaymentMode  PaymentMode     `json:"payment_mode"`
	Date         time.Time       `json:"date"`
	Description  string          `json:"description,omitempty"`
	BillKey      string          `json:"bill_key,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type CreateTransactionRequest struct {
	CustomerID  int             `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	PaymentMode PaymentMode     `json:"payment_mode"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	BillKey     string          `json:"-"`
}

// UpdateTransactionRequest carries the mutable transaction fields. Pointer
// fields distinguish "leave unchanged" from an explicit new value.
type UpdateTransactionRequest struct {
	CustomerID  *int             `json:"customer_id"`
	Amount      *decimal.Decimal `json:"amount"`
	Type        *TransactionType `json:"type"`
	PaymentMode *PaymentMode     `json:"payment_mode"`
	Date        *string          `json:"date"`
	Description *string          `json:"description"`
}

// TransactionSummary is the per-owner aggregate by type. CreditTotal minus
// DebitTotal matches the full-recomputation balance definition summed over
// all of the owner's customers.
type TransactionSummary struct {
	CreditCount int             `json:"credit_count"`
	CreditTotal decimal.Decimal `json:"credit_total"`
	DebitCount  int             `json:"debit_count"`
	DebitTotal  decimal.Decimal `json:"debit_total"`
}
