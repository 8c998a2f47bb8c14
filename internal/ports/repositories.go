// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port design principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never storage row types
//   - Error returns use domain error types (ErrNotFound, ErrConflict, etc.)
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/quotewall/quotewall/internal/domain"
)

// QuoteListQuery describes one page of a filtered, sorted quote listing.
// ViewerID, when set, requests user-vote enrichment for that user.
type QuoteListQuery struct {
	Filter    domain.QuoteFilter
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	ViewerID  *uuid.UUID
}

// Offset returns the number of rows to skip for the requested page.
func (q QuoteListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// QuoteRepository persists quotes and their tag associations.
type QuoteRepository interface {
	// Create inserts a quote with counters initialized to zero and links
	// its tags, creating tag rows on demand.
	Create(ctx context.Context, quote *domain.Quote) error

	// GetView fetches one quote enriched with owner, tags and, when
	// viewerID is non-nil, that user's vote. Returns domain.ErrNotFound
	// if the quote does not exist.
	GetView(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*domain.QuoteView, error)

	// List returns one page of enriched quotes plus the total number of
	// rows matching the filters (ignoring pagination). At most one vote
	// row per quote is consulted for enrichment.
	List(ctx context.Context, query QuoteListQuery) ([]domain.QuoteView, int, error)

	// Update replaces content, author and tag links of an existing quote.
	// Counters are not touched. Returns domain.ErrNotFound if missing.
	Update(ctx context.Context, quote *domain.Quote) error

	// Delete removes a quote, cascading its votes and tag links.
	// Returns domain.ErrNotFound if the quote does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListIDs returns the IDs of all quotes. Used by the counter
	// reconciliation job.
	ListIDs(ctx context.Context) ([]uuid.UUID, error)

	// SetCounters overwrites both denormalized counters. Only the vote
	// engine (in-transaction) and the reconciliation job may call this.
	SetCounters(ctx context.Context, id uuid.UUID, up, down int) error
}

// VoteRepository reads the vote ledger outside of a cast-vote transaction.
type VoteRepository interface {
	// Get returns the vote for a (quote, user) pair, or nil if the user
	// has not voted on the quote.
	Get(ctx context.Context, quoteID, userID uuid.UUID) (*domain.Vote, error)

	// Tally counts +1 and -1 rows for a quote straight from the ledger.
	// Used by the reconciliation job to detect counter drift.
	Tally(ctx context.Context, quoteID uuid.UUID) (up, down int, err error)
}

// VoteTx is the capability set a cast-vote transaction operates on:
// read quote, read vote, write vote, write counters. All calls share one
// underlying store transaction; the engine never sees the transaction handle
// itself.
type VoteTx interface {
	// QuoteForUpdate reads the quote row and locks it for the remainder of
	// the transaction, serializing concurrent votes on the same quote.
	// Returns domain.ErrNotFound if the quote does not exist.
	QuoteForUpdate(ctx context.Context, quoteID uuid.UUID) (*domain.Quote, error)

	// Vote returns the existing vote for the pair, or nil.
	Vote(ctx context.Context, quoteID, userID uuid.UUID) (*domain.Vote, error)

	// CreateVote inserts a new vote row.
	CreateVote(ctx context.Context, vote *domain.Vote) error

	// UpdateVote flips the value of an existing vote row.
	UpdateVote(ctx context.Context, voteID uuid.UUID, value domain.VoteValue) error

	// DeleteVote removes a vote row.
	DeleteVote(ctx context.Context, voteID uuid.UUID) error

	// SetQuoteCounters writes both denormalized counters on the quote row.
	SetQuoteCounters(ctx context.Context, quoteID uuid.UUID, up, down int) error
}

// VoteLedger runs a function inside a single atomic store transaction.
// The transaction commits when fn returns nil and rolls back otherwise,
// so the vote row mutation and the counter write become visible together
// or not at all. Concurrency conflicts surface as domain.ErrWriteConflict.
type VoteLedger interface {
	InTx(ctx context.Context, fn func(tx VoteTx) error) error
}

// UserRepository persists user accounts.
type UserRepository interface {
	// Create inserts a user. Returns domain.ErrConflict if the email is
	// already registered.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns the user or domain.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail returns the user or domain.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TokenRepository persists hashed refresh tokens.
type TokenRepository interface {
	// Store inserts a refresh token record.
	Store(ctx context.Context, token *domain.RefreshToken) error

	// GetByHash returns the token record or domain.ErrNotFound.
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// Revoke marks a token record revoked.
	Revoke(ctx context.Context, id uuid.UUID) error
}
