package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/quotewall/quotewall/internal/domain"
	"github.com/quotewall/quotewall/internal/ports"
)

// sortColumns whitelists the sortable fields. Anything else falls back to
// creation time so user input never reaches the ORDER BY clause directly.
var sortColumns = map[string]string{
	domain.SortByCreatedAt:     "q.created_at",
	domain.SortByUpVoteCount:   "q.up_vote_count",
	domain.SortByDownVoteCount: "q.down_vote_count",
}

// QuoteRepository implements ports.QuoteRepository.
type QuoteRepository struct {
	store *Store
}

// NewQuoteRepository creates a quote repository backed by the store.
func NewQuoteRepository(store *Store) *QuoteRepository {
	return &QuoteRepository{store: store}
}

// Create inserts the quote and links its tags in one transaction.
func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create quote: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	query := `
		INSERT INTO quotes (id, content, author, owner_id, up_vote_count, down_vote_count)
		VALUES ($1, $2, $3, $4, 0, 0)
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(ctx, query, quote.ID, quote.Content, quote.Author, quote.OwnerID).
		Scan(&quote.CreatedAt, &quote.UpdatedAt)
	if err != nil {
		return mapError("create quote", err)
	}

	if err := linkTags(ctx, tx, quote.ID, quote.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapError("create quote", err)
	}

	return nil
}

// GetView fetches one quote with owner, tags and the viewer's vote.
func (r *QuoteRepository) GetView(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*domain.QuoteView, error) {
	query := `
		SELECT q.id, q.content, q.author, q.owner_id, q.up_vote_count, q.down_vote_count,
		       q.created_at, q.updated_at,
		       u.name, u.email,
		       v.value
		FROM quotes q
		JOIN users u ON u.id = q.owner_id
		LEFT JOIN votes v ON v.quote_id = q.id AND v.user_id = $2
		WHERE q.id = $1
	`

	view, err := scanQuoteView(r.store.db.QueryRowContext(ctx, query, id, viewerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("quote", id.String())
		}
		return nil, mapError("get quote", err)
	}

	tags, err := r.loadTags(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	view.Tags = tags[id]

	return view, nil
}

// List returns one page of enriched quotes plus the unpaginated match count.
func (r *QuoteRepository) List(ctx context.Context, query ports.QuoteListQuery) ([]domain.QuoteView, int, error) {
	where, args := buildFilter(query.Filter)

	countQuery := "SELECT COUNT(*) FROM quotes q" + where

	var total int
	if err := r.store.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, mapError("count quotes", err)
	}

	orderCol, ok := sortColumns[query.SortBy]
	if !ok {
		orderCol = sortColumns[domain.SortByCreatedAt]
	}

	direction := "DESC"
	if strings.EqualFold(query.SortOrder, domain.SortOrderAsc) {
		direction = "ASC"
	}

	// The viewer join argument comes after the filter args.
	viewerArg := len(args) + 1
	limitArg, offsetArg := viewerArg+1, viewerArg+2

	listQuery := fmt.Sprintf(`
		SELECT q.id, q.content, q.author, q.owner_id, q.up_vote_count, q.down_vote_count,
		       q.created_at, q.updated_at,
		       u.name, u.email,
		       v.value
		FROM quotes q
		JOIN users u ON u.id = q.owner_id
		LEFT JOIN votes v ON v.quote_id = q.id AND v.user_id = $%d
		%s
		ORDER BY %s %s, q.id
		LIMIT $%d OFFSET $%d
	`, viewerArg, where, orderCol, direction, limitArg, offsetArg)

	args = append(args, query.ViewerID, query.Limit, query.Offset())

	rows, err := r.store.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, mapError("list quotes", err)
	}
	defer rows.Close()

	var (
		views []domain.QuoteView
		ids   []uuid.UUID
	)

	for rows.Next() {
		view, err := scanQuoteView(rows)
		if err != nil {
			return nil, 0, mapError("list quotes", err)
		}

		views = append(views, *view)
		ids = append(ids, view.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, mapError("list quotes", err)
	}

	tags, err := r.loadTags(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	for i := range views {
		views[i].Tags = tags[views[i].ID]
	}

	return views, total, nil
}

// Update replaces content, author and tag links. Counters are untouched.
func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update quote: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	query := `
		UPDATE quotes
		SET content = $2, author = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err = tx.QueryRowContext(ctx, query, quote.ID, quote.Content, quote.Author).Scan(&quote.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError("quote", quote.ID.String())
		}
		return mapError("update quote", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM quote_tags WHERE quote_id = $1`, quote.ID); err != nil {
		return mapError("update quote", err)
	}

	if err := linkTags(ctx, tx, quote.ID, quote.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapError("update quote", err)
	}

	return nil
}

// Delete removes a quote. Votes and tag links cascade at the schema level.
func (r *QuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.store.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return mapError("delete quote", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return mapError("delete quote", err)
	}

	if affected == 0 {
		return domain.NewNotFoundError("quote", id.String())
	}

	return nil
}

// ListIDs returns all quote IDs for the reconciliation job.
func (r *QuoteRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.store.db.QueryContext(ctx, `SELECT id FROM quotes ORDER BY created_at`)
	if err != nil {
		return nil, mapError("list quote ids", err)
	}
	defer rows.Close()

	var ids []uuid.UUID

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, mapError("list quote ids", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError("list quote ids", err)
	}

	return ids, nil
}

// SetCounters overwrites both denormalized counters.
func (r *QuoteRepository) SetCounters(ctx context.Context, id uuid.UUID, up, down int) error {
	res, err := r.store.db.ExecContext(ctx,
		`UPDATE quotes SET up_vote_count = $2, down_vote_count = $3, updated_at = NOW() WHERE id = $1`,
		id, up, down,
	)
	if err != nil {
		return mapError("set quote counters", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return mapError("set quote counters", err)
	}

	if affected == 0 {
		return domain.NewNotFoundError("quote", id.String())
	}

	return nil
}

// loadTags fetches tags for a set of quotes in one query.
func (r *QuoteRepository) loadTags(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.Tag, error) {
	tags := make(map[uuid.UUID][]domain.Tag, len(ids))
	if len(ids) == 0 {
		return tags, nil
	}

	query := `
		SELECT qt.quote_id, t.id, t.name
		FROM quote_tags qt
		JOIN tags t ON t.id = qt.tag_id
		WHERE qt.quote_id = ANY($1)
		ORDER BY t.name
	`

	rows, err := r.store.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, mapError("load tags", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			quoteID uuid.UUID
			tag     domain.Tag
		)

		if err := rows.Scan(&quoteID, &tag.ID, &tag.Name); err != nil {
			return nil, mapError("load tags", err)
		}

		tags[quoteID] = append(tags[quoteID], tag)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError("load tags", err)
	}

	return tags, nil
}

// linkTags upserts tag rows by normalized name and links them to the quote.
func linkTags(ctx context.Context, tx *sql.Tx, quoteID uuid.UUID, tags []domain.Tag) error {
	for i := range tags {
		name := domain.NormalizeTagName(tags[i].Name)
		if name == "" {
			continue
		}

		query := `
			INSERT INTO tags (id, name) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`

		if err := tx.QueryRowContext(ctx, query, uuid.New(), name).Scan(&tags[i].ID); err != nil {
			return mapError("upsert tag", err)
		}
		tags[i].Name = name

		_, err := tx.ExecContext(ctx,
			`INSERT INTO quote_tags (quote_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			quoteID, tags[i].ID,
		)
		if err != nil {
			return mapError("link tag", err)
		}
	}

	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanQuoteView scans the shared quote view column list.
func scanQuoteView(row rowScanner) (*domain.QuoteView, error) {
	var (
		view      domain.QuoteView
		userVote  sql.NullInt64
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(
		&view.ID, &view.Content, &view.Author, &view.OwnerID,
		&view.UpVoteCount, &view.DownVoteCount,
		&createdAt, &updatedAt,
		&view.Owner.Name, &view.Owner.Email,
		&userVote,
	)
	if err != nil {
		return nil, err
	}

	view.CreatedAt = createdAt
	view.UpdatedAt = updatedAt
	view.Owner.ID = view.OwnerID

	if userVote.Valid {
		value := int(userVote.Int64)
		view.UserVote = &value
	}

	return &view, nil
}

// buildFilter renders the WHERE clause for the conjunctive quote filters.
func buildFilter(f domain.QuoteFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	arg := func(v any) int {
		args = append(args, v)
		return len(args)
	}

	if f.Search != "" {
		n := arg("%" + f.Search + "%")
		clauses = append(clauses, fmt.Sprintf("(q.content ILIKE $%d OR q.author ILIKE $%d)", n, n))
	}

	if f.Author != "" {
		n := arg("%" + f.Author + "%")
		clauses = append(clauses, fmt.Sprintf("q.author ILIKE $%d", n))
	}

	if f.Tag != "" {
		n := arg(domain.NormalizeTagName(f.Tag))
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM quote_tags qt JOIN tags t ON t.id = qt.tag_id WHERE qt.quote_id = q.id AND t.name = $%d)", n))
	}

	if f.OwnerID != nil {
		n := arg(*f.OwnerID)
		clauses = append(clauses, fmt.Sprintf("q.owner_id = $%d", n))
	}

	if len(clauses) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
