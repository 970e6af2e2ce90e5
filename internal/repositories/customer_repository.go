package repositories

import (
	"context"
	"errors"
	"fmt"

	"khata-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	var exists bool
	err := r.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM customers WHERE user_id=$1 AND name=$2)`,
		c.UserID, c.Name,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrDuplicate
	}

	return r.DB.QueryRow(ctx,
		`INSERT INTO customers(user_id, name, contact_number, email, address)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, account_balance, created_at, updated_at`,
		c.UserID, c.Name, c.ContactNumber, nullable(c.Email), c.Address,
	).Scan(&c.ID, &c.AccountBalance, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CustomerRepository) Get(ctx context.Context, userID, id int) (*models.Customer, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, user_id, name, contact_number, COALESCE(email, ''), address, account_balance, created_at, updated_at
         FROM customers WHERE id=$1 AND user_id=$2`, id, userID)

	var c models.Customer
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.ContactNumber, &c.Email,
		&c.Address, &c.AccountBalance, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return &c, err
}

func (r *CustomerRepository) List(ctx context.Context, userID int) ([]*models.Customer, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, user_id, name, contact_number, COALESCE(email, ''), address, account_balance, created_at, updated_at
         FROM customers WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		var c models.Customer
		err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.ContactNumber, &c.Email,
			&c.Address, &c.AccountBalance, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		customers = append(customers, &c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE customers SET name=$1, contact_number=$2, email=$3, address=$4, updated_at=CURRENT_TIMESTAMP
         WHERE id=$5 AND user_id=$6`,
		c.Name, c.ContactNumber, nullable(c.Email), c.Address, c.ID, c.UserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// AddToBalance applies a signed delta to the stored account balance as a
// single atomic UPDATE expression. Concurrent writers for the same customer
// serialize on the row; in-process read-modify-write would lose updates.
func (r *CustomerRepository) AddToBalance(ctx context.Context, userID, id int, delta decimal.Decimal) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE customers
         SET account_balance = account_balance + $1, updated_at = CURRENT_TIMESTAMP
         WHERE id=$2 AND user_id=$3`,
		delta, id, userID)
	if err != nil {
		return fmt.Errorf("failed to adjust balance for customer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RecalculateBalance overwrites the stored balance with the signed sum of the
// customer's transactions. This is the authoritative definition of the
// balance and the repair path for any drift in the incremental bookkeeping.
func (r *CustomerRepository) RecalculateBalance(ctx context.Context, userID, id int) (decimal.Decimal, error) {
	row := r.DB.QueryRow(ctx,
		`UPDATE customers
         SET account_balance = (
             SELECT COALESCE(SUM(CASE WHEN type = 'credit' THEN amount ELSE -amount END), 0)
             FROM transactions WHERE customer_id = customers.id
         ), updated_at = CURRENT_TIMESTAMP
         WHERE id=$1 AND user_id=$2
         RETURNING account_balance`,
		id, userID)

	var balance decimal.Decimal
	err := row.Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, models.ErrNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to recalculate balance for customer %d: %w", id, err)
	}
	return balance, nil
}

// Delete removes a customer with all of its transactions and reminders in one
// database transaction and returns the bill keys of the removed transactions
// so the caller can clean up stored attachments afterwards. Transactions are
// removed by the FK cascade as a bulk operation; no per-row balance updates
// run, the balance row itself is going away.
func (r *CustomerRepository) Delete(ctx context.Context, userID, id int) ([]string, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT t.bill_key FROM transactions t
         JOIN customers c ON c.id = t.customer_id
         WHERE c.id=$1 AND c.user_id=$2 AND t.bill_key IS NOT NULL AND t.bill_key <> ''`, id, userID)
	if err != nil {
		return nil, err
	}
	var billKeys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return nil, err
		}
		billKeys = append(billKeys, key)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM customers WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, models.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return billKeys, nil
}
