package repositories

import (
	"context"
	"errors"
	"fmt"

	"khata-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionRepository struct {
	DB *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{DB: db}
}

const transactionColumns = `t.id, t.customer_id, c.name, t.amount, t.type, t.payment_mode,
		t.date, COALESCE(t.description, ''), COALESCE(t.bill_key, ''), t.created_at, t.updated_at`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.CustomerID, &t.CustomerName, &t.Amount, &t.Type, &t.PaymentMode,
		&t.Date, &t.Description, &t.BillKey, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts the transaction. The owning customer must already have been
// validated against the account-holder; the FK guarantees it still existed at
// insert time.
func (r *TransactionRepository) Create(ctx context.Context, t *models.Transaction) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO transactions(customer_id, amount, type, payment_mode, date, description, bill_key)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING id, created_at, updated_at`,
		t.CustomerID, t.Amount, t.Type, t.PaymentMode, t.Date, nullable(t.Description), nullable(t.BillKey),
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) Get(ctx context.Context, userID, id int) (*models.Transaction, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+transactionColumns+`
         FROM transactions t JOIN customers c ON c.id = t.customer_id
         WHERE t.id=$1 AND c.user_id=$2`, id, userID)
	return scanTransaction(row)
}

func (r *TransactionRepository) List(ctx context.Context, userID int) ([]*models.Transaction, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+transactionColumns+`
         FROM transactions t JOIN customers c ON c.id = t.customer_id
         WHERE c.user_id=$1
         ORDER BY t.created_at DESC, t.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (r *TransactionRepository) ListByCustomer(ctx context.Context, userID, customerID int) ([]*models.Transaction, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+transactionColumns+`
         FROM transactions t JOIN customers c ON c.id = t.customer_id
         WHERE c.id=$1 AND c.user_id=$2
         ORDER BY t.date DESC, t.id DESC`, customerID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]*models.Transaction, error) {
	var txns []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(&t.ID, &t.CustomerID, &t.CustomerName, &t.Amount, &t.Type, &t.PaymentMode,
			&t.Date, &t.Description, &t.BillKey, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		txns = append(txns, &t)
	}
	return txns, rows.Err()
}

// Update rewrites the mutable transaction fields, scoped to the owner through
// the customer join. Zero rows affected means the row vanished or was never
// ours; the ledger service decides whether that needs a balance repair.
func (r *TransactionRepository) Update(ctx context.Context, userID int, t *models.Transaction) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE transactions SET customer_id=$1, amount=$2, type=$3, payment_mode=$4, date=$5,
		        description=$6, updated_at=CURRENT_TIMESTAMP
         WHERE id=$7 AND customer_id IN (SELECT id FROM customers WHERE user_id=$8)`,
		t.CustomerID, t.Amount, t.Type, t.PaymentMode, t.Date, nullable(t.Description), t.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes the transaction and returns the deleted row so the caller
// can apply the inverse delta and clean up the bill attachment. A repeat
// delete finds no row and reports not-found; the inverse delta is never
// applied twice. Reminders referencing the transaction go with it (FK
// cascade).
func (r *TransactionRepository) Delete(ctx context.Context, userID, id int) (*models.Transaction, error) {
	row := r.DB.QueryRow(ctx,
		`DELETE FROM transactions t
         USING customers c
         WHERE t.id=$1 AND t.customer_id = c.id AND c.user_id=$2
         RETURNING t.id, t.customer_id, c.name, t.amount, t.type, t.payment_mode,
                   t.date, COALESCE(t.description, ''), COALESCE(t.bill_key, ''), t.created_at, t.updated_at`,
		id, userID)
	return scanTransaction(row)
}

// Summary aggregates the owner's transactions by type. Credit total minus
// debit total matches what RecalculateBalance would write, summed across the
// owner's customers.
func (r *TransactionRepository) Summary(ctx context.Context, userID int) (*models.TransactionSummary, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT
             COUNT(*) FILTER (WHERE t.type = 'credit'),
             COALESCE(SUM(t.amount) FILTER (WHERE t.type = 'credit'), 0),
             COUNT(*) FILTER (WHERE t.type = 'debit'),
             COALESCE(SUM(t.amount) FILTER (WHERE t.type = 'debit'), 0)
         FROM transactions t JOIN customers c ON c.id = t.customer_id
         WHERE c.user_id=$1`, userID)

	var s models.TransactionSummary
	if err := row.Scan(&s.CreditCount, &s.CreditTotal, &s.DebitCount, &s.DebitTotal); err != nil {
		return nil, err
	}
	return &s, nil
}
