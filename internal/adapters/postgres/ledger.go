package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/quotewall/quotewall/internal/domain"
	"github.com/quotewall/quotewall/internal/ports"
)

// VoteLedger implements ports.VoteLedger. Each InTx call runs fn against a
// single transaction so the vote row mutation and the counter write commit
// or roll back together.
type VoteLedger struct {
	store *Store
}

// NewVoteLedger creates a vote ledger backed by the store.
func NewVoteLedger(store *Store) *VoteLedger {
	return &VoteLedger{store: store}
}

// InTx runs fn inside a transaction. Driver-level serialization failures
// and deadlocks surface as domain.ErrWriteConflict so callers can retry.
func (l *VoteLedger) InTx(ctx context.Context, fn func(tx ports.VoteTx) error) error {
	tx, err := l.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin vote transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(&voteTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapError("commit vote transaction", err)
	}

	return nil
}

// voteTx implements ports.VoteTx on one *sql.Tx.
type voteTx struct {
	tx *sql.Tx
}

// QuoteForUpdate locks the quote row for the rest of the transaction.
func (t *voteTx) QuoteForUpdate(ctx context.Context, quoteID uuid.UUID) (*domain.Quote, error) {
	query := `
		SELECT id, content, author, owner_id, up_vote_count, down_vote_count, created_at, updated_at
		FROM quotes
		WHERE id = $1
		FOR UPDATE
	`

	var quote domain.Quote

	err := t.tx.QueryRowContext(ctx, query, quoteID).Scan(
		&quote.ID, &quote.Content, &quote.Author, &quote.OwnerID,
		&quote.UpVoteCount, &quote.DownVoteCount,
		&quote.CreatedAt, &quote.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("quote", quoteID.String())
		}
		return nil, mapError("lock quote", err)
	}

	return &quote, nil
}

// Vote returns the existing vote for the pair, or nil.
func (t *voteTx) Vote(ctx context.Context, quoteID, userID uuid.UUID) (*domain.Vote, error) {
	query := `SELECT id, quote_id, user_id, value, created_at, updated_at FROM votes WHERE quote_id = $1 AND user_id = $2`

	var vote domain.Vote

	err := t.tx.QueryRowContext(ctx, query, quoteID, userID).Scan(
		&vote.ID, &vote.QuoteID, &vote.UserID, &vote.Value, &vote.CreatedAt, &vote.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("read vote", err)
	}

	return &vote, nil
}

// CreateVote inserts a new vote row. The unique (quote_id, user_id)
// constraint backstops the one-vote-per-user invariant; hitting it means a
// concurrent writer won the race, so it maps to a retryable write conflict.
func (t *voteTx) CreateVote(ctx context.Context, vote *domain.Vote) error {
	query := `INSERT INTO votes (id, quote_id, user_id, value) VALUES ($1, $2, $3, $4)`

	_, err := t.tx.ExecContext(ctx, query, vote.ID, vote.QuoteID, vote.UserID, vote.Value)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewWriteConflictError("create vote", err)
		}
		return mapError("create vote", err)
	}

	return nil
}

// UpdateVote flips the value of an existing vote row.
func (t *voteTx) UpdateVote(ctx context.Context, voteID uuid.UUID, value domain.VoteValue) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE votes SET value = $2, updated_at = NOW() WHERE id = $1`, voteID, value)
	if err != nil {
		return mapError("update vote", err)
	}

	return nil
}

// DeleteVote removes a vote row.
func (t *voteTx) DeleteVote(ctx context.Context, voteID uuid.UUID) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM votes WHERE id = $1`, voteID)
	if err != nil {
		return mapError("delete vote", err)
	}

	return nil
}

// SetQuoteCounters writes both denormalized counters on the locked row.
func (t *voteTx) SetQuoteCounters(ctx context.Context, quoteID uuid.UUID, up, down int) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE quotes SET up_vote_count = $2, down_vote_count = $3, updated_at = NOW() WHERE id = $1`,
		quoteID, up, down,
	)
	if err != nil {
		return mapError("set quote counters", err)
	}

	return nil
}
