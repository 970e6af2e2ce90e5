package services

import (
	"context"
	"errors"

	"khata-backend/internal/models"
	"khata-backend/internal/timeutil"
)

// ReminderStore is the reminder repository contract.
type ReminderStore interface {
	Create(ctx context.Context, rem *models.PaymentReminder) error
	Get(ctx context.Context, userID, id int) (*models.PaymentReminder, error)
	List(ctx context.Context, userID int) ([]*models.PaymentReminder, error)
	UpdateStatus(ctx context.Context, userID, id int, status models.ReminderStatus) error
	Delete(ctx context.Context, userID, id int) error
}

// ReminderService validates and stores payment reminders. It reuses the
// ledger's stores to check that referenced customers and transactions exist
// and belong together.
type ReminderService struct {
	reminders    ReminderStore
	customers    BalanceStore
	transactions TransactionStore
}

func NewReminderService(reminders ReminderStore, customers BalanceStore, transactions TransactionStore) *ReminderService {
	return &ReminderService{
		reminders:    reminders,
		customers:    customers,
		transactions: transactions,
	}
}

func (s *ReminderService) CreateReminder(ctx context.Context, userID int, req *models.CreateReminderRequest) (*models.PaymentReminder, error) {
	if req.CustomerID == nil && req.TransactionID == nil {
		return nil, errors.New("reminder needs a customer or a transaction reference")
	}
	if req.AmountDue.IsNegative() {
		return nil, errors.New("amount due must not be negative")
	}

	reminderDate, err := timeutil.ParseInIST(timeutil.DateLayout, req.ReminderDate)
	if err != nil {
		return nil, errors.New("reminder_date must be in YYYY-MM-DD format")
	}
	if timeutil.StartOfDay(reminderDate).Equal(timeutil.StartOfDay(timeutil.Now())) {
		return nil, errors.New("reminder_date must not be today")
	}

	if req.CustomerID != nil {
		if _, err := s.customers.Get(ctx, userID, *req.CustomerID); err != nil {
			return nil, err
		}
	}
	if req.TransactionID != nil {
		txn, err := s.transactions.Get(ctx, userID, *req.TransactionID)
		if err != nil {
			return nil, err
		}
		if req.CustomerID != nil && txn.CustomerID != *req.CustomerID {
			return nil, errors.New("transaction does not belong to the given customer")
		}
	}

	rem := &models.PaymentReminder{
		CustomerID:    req.CustomerID,
		TransactionID: req.TransactionID,
		AmountDue:     req.AmountDue,
		ReminderDate:  reminderDate,
		Status:        models.ReminderPending,
	}
	if err := s.reminders.Create(ctx, rem); err != nil {
		return nil, err
	}
	return rem, nil
}

func (s *ReminderService) GetReminder(ctx context.Context, userID, id int) (*models.PaymentReminder, error) {
	return s.reminders.Get(ctx, userID, id)
}

func (s *ReminderService) ListReminders(ctx context.Context, userID int) ([]*models.PaymentReminder, error) {
	return s.reminders.List(ctx, userID)
}

// UpdateStatus is the only mutation a reminder supports after creation.
func (s *ReminderService) UpdateStatus(ctx context.Context, userID, id int, req *models.UpdateReminderRequest) (*models.PaymentReminder, error) {
	if !req.Status.Valid() {
		return nil, errors.New("status must be pending or paid")
	}
	if err := s.reminders.UpdateStatus(ctx, userID, id, req.Status); err != nil {
		return nil, err
	}
	return s.reminders.Get(ctx, userID, id)
}

func (s *ReminderService) DeleteReminder(ctx context.Context, userID, id int) error {
	return s.reminders.Delete(ctx, userID, id)
}
