package repositories

import (
	"context"
	"errors"

	"khata-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReminderRepository struct {
	DB *pgxpool.Pool
}

func NewReminderRepository(db *pgxpool.Pool) *ReminderRepository {
	return &ReminderRepository{DB: db}
}

func (r *ReminderRepository) Create(ctx context.Context, rem *models.PaymentReminder) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO payment_reminders(customer_id, transaction_id, amount_due, reminder_date, status)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, created_at, updated_at`,
		rem.CustomerID, rem.TransactionID, rem.AmountDue, rem.ReminderDate, rem.Status,
	).Scan(&rem.ID, &rem.CreatedAt, &rem.UpdatedAt)
}

// ownedReminders scopes reminders to the account-holder through whichever
// reference is set. A reminder always has at least one.
const ownedReminders = `
	FROM payment_reminders pr
	LEFT JOIN customers rc ON rc.id = pr.customer_id
	LEFT JOIN transactions rt ON rt.id = pr.transaction_id
	LEFT JOIN customers tc ON tc.id = rt.customer_id
	WHERE COALESCE(rc.user_id, tc.user_id) = `

const reminderColumns = `pr.id, pr.customer_id, pr.transaction_id, pr.amount_due,
	pr.reminder_date, pr.status, pr.created_at, pr.updated_at`

func (r *ReminderRepository) Get(ctx context.Context, userID, id int) (*models.PaymentReminder, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+reminderColumns+ownedReminders+`$1 AND pr.id=$2`, userID, id)

	var rem models.PaymentReminder
	err := row.Scan(&rem.ID, &rem.CustomerID, &rem.TransactionID, &rem.AmountDue,
		&rem.ReminderDate, &rem.Status, &rem.CreatedAt, &rem.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return &rem, err
}

func (r *ReminderRepository) List(ctx context.Context, userID int) ([]*models.PaymentReminder, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+reminderColumns+ownedReminders+`$1 ORDER BY pr.reminder_date DESC, pr.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.PaymentReminder
	for rows.Next() {
		var rem models.PaymentReminder
		err := rows.Scan(&rem.ID, &rem.CustomerID, &rem.TransactionID, &rem.AmountDue,
			&rem.ReminderDate, &rem.Status, &rem.CreatedAt, &rem.UpdatedAt)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, &rem)
	}
	return reminders, rows.Err()
}

func (r *ReminderRepository) UpdateStatus(ctx context.Context, userID, id int, status models.ReminderStatus) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE payment_reminders SET status=$1, updated_at=CURRENT_TIMESTAMP
         WHERE id=$2 AND id IN (SELECT pr.id `+ownedReminders+`$3)`,
		status, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ReminderRepository) Delete(ctx context.Context, userID, id int) error {
	tag, err := r.DB.Exec(ctx,
		`DELETE FROM payment_reminders
         WHERE id=$1 AND id IN (SELECT pr.id `+ownedReminders+`$2)`,
		id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
