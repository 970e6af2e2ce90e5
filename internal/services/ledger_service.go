package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"khata-backend/internal/metrics"
	"khata-backend/internal/models"
	"khata-backend/internal/timeutil"

	"github.com/shopspring/decimal"
)

// TransactionStore is the slice of the transaction repository the ledger
// service depends on.
type TransactionStore interface {
	Create(ctx context.Context, t *models.Transaction) error
	Get(ctx context.Context, userID, id int) (*models.Transaction, error)
	List(ctx context.Context, userID int) ([]*models.Transaction, error)
	ListByCustomer(ctx context.Context, userID, customerID int) ([]*models.Transaction, error)
	Update(ctx context.Context, userID int, t *models.Transaction) error
	Delete(ctx context.Context, userID, id int) (*models.Transaction, error)
	Summary(ctx context.Context, userID int) (*models.TransactionSummary, error)
}

// BalanceStore is the customer-side contract: reads plus the two balance
// mutations. AddToBalance must be a single atomic increment against the
// stored value, never a read-modify-write of an in-process copy.
type BalanceStore interface {
	Get(ctx context.Context, userID, id int) (*models.Customer, error)
	AddToBalance(ctx context.Context, userID, id int, delta decimal.Decimal) error
	RecalculateBalance(ctx context.Context, userID, id int) (decimal.Decimal, error)
}

// BillRemover deletes stored bill attachments. Failures are logged, never
// surfaced; attachment cleanup is a side effect, not a correctness invariant.
type BillRemover interface {
	Delete(ctx context.Context, key string) error
}

// LedgerService owns every transaction mutation and keeps each customer's
// account_balance equal to the signed sum of its transactions: credits add,
// debits subtract. The incremental path is O(1) per mutation; the
// recalculation path is the authoritative fallback.
type LedgerService struct {
	transactions TransactionStore
	balances     BalanceStore
	bills        BillRemover
}

func NewLedgerService(transactions TransactionStore, balances BalanceStore, bills BillRemover) *LedgerService {
	return &LedgerService{
		transactions: transactions,
		balances:     balances,
		bills:        bills,
	}
}

// signedDelta is the monetary impact of a transaction on its customer's
// balance. Amounts are stored positive; the sign comes from the type.
func signedDelta(amount decimal.Decimal, typ models.TransactionType) decimal.Decimal {
	if typ == models.TransactionDebit {
		return amount.Neg()
	}
	return amount
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if amount.Exponent() < -2 {
		return errors.New("amount must have at most two decimal places")
	}
	return nil
}

// CreateTransaction records a transaction and applies its delta to the
// owning customer's balance.
func (s *LedgerService) CreateTransaction(ctx context.Context, userID int, req *models.CreateTransactionRequest) (*models.Transaction, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, errors.New("type must be credit or debit")
	}
	if req.PaymentMode == "" {
		req.PaymentMode = models.PaymentModeCash
	}
	if !req.PaymentMode.Valid() {
		return nil, errors.New("invalid payment mode")
	}
	date, err := timeutil.ParseInIST(timeutil.DateLayout, req.Date)
	if err != nil {
		return nil, errors.New("date must be in YYYY-MM-DD format")
	}

	// Ownership check up front: a customer belonging to another
	// account-holder is indistinguishable from a missing one.
	customer, err := s.balances.Get(ctx, userID, req.CustomerID)
	if err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Amount:       req.Amount,
		Type:         req.Type,
		PaymentMode:  req.PaymentMode,
		Date:         date,
		Description:  req.Description,
		BillKey:      req.BillKey,
	}
	if err := s.transactions.Create(ctx, txn); err != nil {
		return nil, err
	}

	// If the customer row was deleted between the insert and this point,
	// the cascade took the transaction with it; report not-found rather
	// than leaving a dangling record.
	if err := s.balances.AddToBalance(ctx, userID, customer.ID, signedDelta(txn.Amount, txn.Type)); err != nil {
		return nil, err
	}
	metrics.BalanceDeltasApplied.WithLabelValues("create").Inc()

	return txn, nil
}

// UpdateTransaction rewrites a transaction and applies the net balance
// change: the new signed impact minus the old one. Moving a transaction to a
// different customer is handled as delete-then-create, the old customer gets
// the inverse of the old delta and the new customer the fresh delta.
func (s *LedgerService) UpdateTransaction(ctx context.Context, userID, id int, req *models.UpdateTransactionRequest) (*models.Transaction, error) {
	prior, err := s.transactions.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updated := *prior
	if req.Amount != nil {
		if err := validateAmount(*req.Amount); err != nil {
			return nil, err
		}
		updated.Amount = *req.Amount
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, errors.New("type must be credit or debit")
		}
		updated.Type = *req.Type
	}
	if req.PaymentMode != nil {
		if !req.PaymentMode.Valid() {
			return nil, errors.New("invalid payment mode")
		}
		updated.PaymentMode = *req.PaymentMode
	}
	if req.Date != nil {
		date, err := timeutil.ParseInIST(timeutil.DateLayout, *req.Date)
		if err != nil {
			return nil, errors.New("date must be in YYYY-MM-DD format")
		}
		updated.Date = date
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}

	moved := req.CustomerID != nil && *req.CustomerID != prior.CustomerID
	if moved {
		newCustomer, err := s.balances.Get(ctx, userID, *req.CustomerID)
		if err != nil {
			return nil, err
		}
		updated.CustomerID = newCustomer.ID
		updated.CustomerName = newCustomer.Name
	}

	if err := s.transactions.Update(ctx, userID, &updated); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// The row was read above but is gone now: lost a race with a
			// concurrent delete. The incremental bookkeeping can no longer
			// be trusted for this customer, so rebuild from what remains.
			s.repairAfterRace(ctx, userID, prior.CustomerID)
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	oldDelta := signedDelta(prior.Amount, prior.Type)
	newDelta := signedDelta(updated.Amount, updated.Type)

	if moved {
		if err := s.balances.AddToBalance(ctx, userID, prior.CustomerID, oldDelta.Neg()); err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		if err := s.balances.AddToBalance(ctx, userID, updated.CustomerID, newDelta); err != nil {
			return nil, err
		}
		metrics.BalanceDeltasApplied.WithLabelValues("update").Inc()
	} else if net := newDelta.Sub(oldDelta); !net.IsZero() {
		if err := s.balances.AddToBalance(ctx, userID, updated.CustomerID, net); err != nil {
			return nil, err
		}
		metrics.BalanceDeltasApplied.WithLabelValues("update").Inc()
	}

	return s.transactions.Get(ctx, userID, id)
}

// DeleteTransaction removes a transaction and reverses its balance impact.
// Deleting an already-deleted transaction is not-found; the inverse delta is
// applied exactly once.
func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id int) error {
	deleted, err := s.transactions.Delete(ctx, userID, id)
	if err != nil {
		return err
	}

	err = s.balances.AddToBalance(ctx, userID, deleted.CustomerID, signedDelta(deleted.Amount, deleted.Type).Neg())
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		// Not-found here means the customer went away concurrently and took
		// its balance with it; there is nothing left to adjust.
		return err
	}
	if err == nil {
		metrics.BalanceDeltasApplied.WithLabelValues("delete").Inc()
	}

	s.removeBill(ctx, deleted.BillKey)
	return nil
}

// RecalculateBalance is the on-demand repair: it overwrites the stored
// balance with the signed transaction sum and returns the result.
func (s *LedgerService) RecalculateBalance(ctx context.Context, userID, customerID int) (decimal.Decimal, error) {
	balance, err := s.balances.RecalculateBalance(ctx, userID, customerID)
	if err != nil {
		return decimal.Zero, err
	}
	metrics.BalanceRecalculations.WithLabelValues("repair").Inc()
	return balance, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, userID, id int) (*models.Transaction, error) {
	return s.transactions.Get(ctx, userID, id)
}

func (s *LedgerService) ListTransactions(ctx context.Context, userID int) ([]*models.Transaction, error) {
	return s.transactions.List(ctx, userID)
}

func (s *LedgerService) ListCustomerTransactions(ctx context.Context, userID, customerID int) ([]*models.Transaction, error) {
	if _, err := s.balances.Get(ctx, userID, customerID); err != nil {
		return nil, err
	}
	return s.transactions.ListByCustomer(ctx, userID, customerID)
}

// Summary reports per-type counts and totals for the owner, consistent with
// the recalculation definition of the balance.
func (s *LedgerService) Summary(ctx context.Context, userID int) (*models.TransactionSummary, error) {
	return s.transactions.Summary(ctx, userID)
}

// repairAfterRace recomputes a customer's balance after the incremental path
// lost a race. Repair failure only gets logged; the caller already reports
// not-found for the primary operation.
func (s *LedgerService) repairAfterRace(ctx context.Context, userID, customerID int) {
	if _, err := s.balances.RecalculateBalance(ctx, userID, customerID); err != nil {
		// Not-found means the customer is gone too and took its balance
		// along; there was nothing to repair.
		if !errors.Is(err, models.ErrNotFound) {
			log.Printf("[Ledger] balance repair failed for customer %d: %v", customerID, err)
		}
		return
	}
	metrics.BalanceRecalculations.WithLabelValues("race").Inc()
}

// removeBill deletes a stored bill attachment, best-effort.
func (s *LedgerService) removeBill(ctx context.Context, key string) {
	if s.bills == nil || key == "" {
		return
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.bills.Delete(cleanupCtx, key); err != nil {
		metrics.AttachmentDeleteFailures.Inc()
		log.Printf("[Ledger] %v", fmt.Errorf("bill cleanup: %w", err))
	}
}
