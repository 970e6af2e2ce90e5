package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReminderStatus string

const (
	ReminderPending ReminderStatus = "pending"
	ReminderPaid    ReminderStatus = "paid"
)

func (s ReminderStatus) Valid() bool {
	return s == ReminderPending || s == ReminderPaid
}

// PaymentReminder references a customer and/or one of its transactions.
// At least one reference is always set.
type PaymentReminder struct {
	ID            int             `json:"id"`
	CustomerID    *int            `json:"customer_id,omitempty"`
	TransactionID *int            `json:"transaction_id,omitempty"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	ReminderDate  time.Time       `json:"reminder_date"`
	Status        ReminderStatus  `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type CreateReminderRequest struct {
	CustomerID    *int            `json:"customer_id"`
	TransactionID *int            `json:"transaction_id"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	ReminderDate  string          `json:"reminder_date"`
}

// UpdateReminderRequest only moves the status; every other reminder field is
// fixed at creation.
type UpdateReminderRequest struct {
	Status ReminderStatus `json:"status"`
}
