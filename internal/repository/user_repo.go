package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
)

// UserRepository handles database operations for accounts
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *UserRepository) WithTx(tx *database.Tx) *UserRepository {
	return &UserRepository{db: tx}
}

const userColumns = `id, username, COALESCE(email, ''), password_hash, first_name, last_name,
	is_active, is_guest, expires_at, last_login, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.IsActive,
		&user.IsGuest,
		&user.ExpiresAt,
		&user.LastLogin,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new account and sets its ID
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name, is_active, is_guest, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		user.Username,
		nullableString(user.Email),
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.IsActive,
		user.IsGuest,
		user.ExpiresAt,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE " + where
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByID retrieves an account by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByUsername retrieves an account by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "username = ?", username)
}

// GetByEmail retrieves an account by email address
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

// ExtendGuest pushes back the expiry of a guest account
func (r *UserRepository) ExtendGuest(ctx context.Context, id int64, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET expires_at = ? WHERE id = ? AND is_guest = ?", expiresAt, id, true)
	if err != nil {
		return fmt.Errorf("failed to extend guest: %w", err)
	}
	return nil
}

// UpdateLastLogin records a successful login
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET last_login = ? WHERE id = ?", at, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// UpdateIdentity changes the editable account fields
func (r *UserRepository) UpdateIdentity(ctx context.Context, id int64, firstName, lastName, email string) error {
	query := "UPDATE users SET first_name = ?, last_name = ?, email = ? WHERE id = ?"
	_, err := r.db.ExecContext(ctx, query, firstName, lastName, nullableString(email), id)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// DeleteExpiredGuests removes guest accounts whose lifetime ended before now.
// Profiles, submissions and progressions go with them through cascades.
func (r *UserRepository) DeleteExpiredGuests(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM users WHERE is_guest = ? AND expires_at IS NOT NULL AND expires_at < ?", true, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired guests: %w", err)
	}
	return result.RowsAffected()
}

// Count returns the number of accounts, optionally only guests
func (r *UserRepository) Count(ctx context.Context, guestsOnly bool) (int, error) {
	query := "SELECT COUNT(*) FROM users"
	var args []interface{}
	if guestsOnly {
		query += " WHERE is_guest = ?"
		args = append(args, true)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
