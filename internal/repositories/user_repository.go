package repositories

import (
	"context"
	"errors"

	"khata-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	u.IsActive = true
	return r.DB.QueryRow(ctx,
		`INSERT INTO users(first_name, last_name, mobile_number, email, address, password_hash, is_active)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING id, created_at, updated_at`,
		u.FirstName, u.LastName, u.MobileNumber, nullable(u.Email), nullable(u.Address), u.PasswordHash, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) Get(ctx context.Context, id int) (*models.User, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, first_name, last_name, mobile_number, COALESCE(email, ''), COALESCE(address, ''),
		        password_hash, is_active, created_at, updated_at
         FROM users WHERE id=$1`, id)

	var user models.User
	err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.MobileNumber, &user.Email,
		&user.Address, &user.PasswordHash, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return &user, err
}

func (r *UserRepository) GetByMobileNumber(ctx context.Context, mobile string) (*models.User, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, first_name, last_name, mobile_number, COALESCE(email, ''), COALESCE(address, ''),
		        password_hash, is_active, created_at, updated_at
         FROM users WHERE mobile_number=$1`, mobile)

	var user models.User
	err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.MobileNumber, &user.Email,
		&user.Address, &user.PasswordHash, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return &user, err
}

// nullable maps empty strings to NULL so optional columns stay NULL at rest.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
