package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/quotewall/quotewall/internal/domain"
)

// VoteRepository implements ports.VoteRepository for reads outside the
// cast-vote transaction.
type VoteRepository struct {
	store *Store
}

// NewVoteRepository creates a vote repository backed by the store.
func NewVoteRepository(store *Store) *VoteRepository {
	return &VoteRepository{store: store}
}

// Get returns the vote for a (quote, user) pair, or nil if absent.
func (r *VoteRepository) Get(ctx context.Context, quoteID, userID uuid.UUID) (*domain.Vote, error) {
	query := `SELECT id, quote_id, user_id, value, created_at, updated_at FROM votes WHERE quote_id = $1 AND user_id = $2`

	var vote domain.Vote

	err := r.store.db.QueryRowContext(ctx, query, quoteID, userID).Scan(
		&vote.ID, &vote.QuoteID, &vote.UserID, &vote.Value, &vote.CreatedAt, &vote.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get vote", err)
	}

	return &vote, nil
}

// Tally recounts both counters for a quote straight from the ledger.
func (r *VoteRepository) Tally(ctx context.Context, quoteID uuid.UUID) (int, int, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE value = 1),
		       COUNT(*) FILTER (WHERE value = -1)
		FROM votes
		WHERE quote_id = $1
	`

	var up, down int
	if err := r.store.db.QueryRowContext(ctx, query, quoteID).Scan(&up, &down); err != nil {
		return 0, 0, mapError("tally votes", err)
	}

	return up, down, nil
}
