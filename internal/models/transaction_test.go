package models

import "testing"

func TestTransactionTypeValid(t *testing.T) {
	tests := []struct {
		typ  TransactionType
		want bool
	}{
		{TransactionCredit, true},
		{TransactionDebit, true},
		{"transfer", false},
		{"CREDIT", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.typ.Valid(); got != tt.want {
			t.Errorf("TransactionType(%q).Valid() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestPaymentModeValid(t *testing.T) {
	tests := []struct {
		mode PaymentMode
		want bool
	}{
		{PaymentModeCash, true},
		{PaymentModeUPI, true},
		{PaymentModeCard, true},
		{PaymentModeCheque, true},
		{PaymentModeOther, true},
		{"bitcoin", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.mode.Valid(); got != tt.want {
			t.Errorf("PaymentMode(%q).Valid() = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestReminderStatusValid(t *testing.T) {
	tests := []struct {
		status ReminderStatus
		want   bool
	}{
		{ReminderPending, true},
		{ReminderPaid, true},
		{"sent", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.status.Valid(); got != tt.want {
			t.Errorf("ReminderStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
