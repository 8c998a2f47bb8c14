package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/quotewall/quotewall/internal/domain"
)

// TokenRepository implements ports.TokenRepository. Only SHA-256 hashes of
// refresh tokens are stored.
type TokenRepository struct {
	store *Store
}

// NewTokenRepository creates a token repository backed by the store.
func NewTokenRepository(store *Store) *TokenRepository {
	return &TokenRepository{store: store}
}

// Store inserts a refresh token record.
func (r *TokenRepository) Store(ctx context.Context, token *domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING created_at
	`

	err := r.store.db.QueryRowContext(ctx, query, token.ID, token.UserID, token.TokenHash, token.ExpiresAt).
		Scan(&token.CreatedAt)
	if err != nil {
		return mapError("store refresh token", err)
	}

	return nil
}

// GetByHash returns the token record or domain.ErrNotFound.
func (r *TokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`

	var token domain.RefreshToken

	err := r.store.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.Revoked, &token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("refresh token", "")
		}
		return nil, mapError("get refresh token", err)
	}

	return &token, nil
}

// Revoke marks a token record revoked.
func (r *TokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	res, err := r.store.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1`, id)
	if err != nil {
		return mapError("revoke refresh token", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return mapError("revoke refresh token", err)
	}

	if affected == 0 {
		return domain.NewNotFoundError("refresh token", id.String())
	}

	return nil
}
