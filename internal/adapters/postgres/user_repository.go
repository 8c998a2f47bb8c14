package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/quotewall/quotewall/internal/domain"
)

// UserRepository implements ports.UserRepository.
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a user repository backed by the store.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create inserts a user. A duplicate email maps to domain.ErrConflict via
// the unique constraint on users.email.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.store.db.QueryRowContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash).
		Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("user", "email already registered")
		}
		return mapError("create user", err)
	}

	return nil
}

// GetByID returns the user or domain.ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`

	return r.scanUser(r.store.db.QueryRowContext(ctx, query, id), id.String())
}

// GetByEmail returns the user or domain.ErrNotFound.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`

	return r.scanUser(r.store.db.QueryRowContext(ctx, query, email), email)
}

func (r *UserRepository) scanUser(row *sql.Row, key string) (*domain.User, error) {
	var user domain.User

	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("user", key)
		}
		return nil, mapError("get user", err)
	}

	return &user, nil
}
