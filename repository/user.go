package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cafe-directory/models"

	"github.com/jmoiron/sqlx"
)

// UserRepository stores accounts in the users table.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, "SELECT id, email, password, name, is_admin FROM users WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, translate(err))
	}
	return &user, nil
}

// GetByEmail is an exact, case-sensitive match.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, "SELECT id, email, password, name, is_admin FROM users WHERE email = ?", email)
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", translate(err))
	}
	return &user, nil
}

// Insert stores the user and sets its id. The very first account becomes
// the administrator; the check runs inside the insert statement so two
// concurrent first sign-ups cannot both be promoted.
func (r *UserRepository) Insert(ctx context.Context, user *models.User) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO users (email, password, name, is_admin)
		VALUES (?, ?, ?, NOT EXISTS (SELECT 1 FROM users))`,
		user.Email, user.Password, user.Name)
	if err != nil {
		return fmt.Errorf("insert user: %w", translate(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = int(id)

	var admin bool
	if err := r.db.GetContext(ctx, &admin, "SELECT is_admin FROM users WHERE id = ?", user.ID); err != nil {
		return fmt.Errorf("read back user %d: %w", user.ID, err)
	}
	user.Admin = admin
	return nil
}

func expectOneRow(result sql.Result, op string, id int) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
	}
	return nil
}
