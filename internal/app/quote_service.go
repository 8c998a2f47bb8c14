package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/quotewall/quotewall/internal/domain"
	"github.com/quotewall/quotewall/internal/platform/logging"
	"github.com/quotewall/quotewall/internal/ports"
)

// Pagination bounds for quote listings.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// ListQuotesParams carries the query surface of the quote listing endpoints.
type ListQuotesParams struct {
	Filter    domain.QuoteFilter
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	ViewerID  *uuid.UUID
}

// QuoteService orchestrates quote CRUD and listing use cases.
type QuoteService struct {
	quotes ports.QuoteRepository
	logger *slog.Logger
}

// QuoteServiceConfig contains dependencies for the quote service.
type QuoteServiceConfig struct {
	Quotes ports.QuoteRepository
	Logger *slog.Logger
}

// NewQuoteService creates a quote service.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteService{
		quotes: cfg.Quotes,
		logger: logger.With(slog.String("component", "app.QuoteService")),
	}
}

// Create validates and persists a new quote owned by ownerID.
func (s *QuoteService) Create(ctx context.Context, ownerID uuid.UUID, content, author string, tags []string) (*domain.QuoteView, error) {
	content = strings.TrimSpace(content)
	author = strings.TrimSpace(author)

	if content == "" {
		return nil, domain.NewValidationError("content", "cannot be empty")
	}

	if author == "" {
		return nil, domain.NewValidationError("author", "cannot be empty")
	}

	quote := &domain.Quote{
		ID:      uuid.New(),
		Content: content,
		Author:  author,
		OwnerID: ownerID,
		Tags:    tagsFromNames(tags),
	}

	if err := s.quotes.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("creating quote: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "quote created",
		slog.String("quote_id", quote.ID.String()),
		slog.String("owner_id", ownerID.String()),
	)

	return s.Get(ctx, quote.ID, &ownerID)
}

// Get returns one quote enriched with owner, tags and the viewer's vote.
func (s *QuoteService) Get(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*domain.QuoteView, error) {
	view, err := s.quotes.GetView(ctx, id, viewerID)
	if err != nil {
		return nil, fmt.Errorf("getting quote: %w", err)
	}

	return view, nil
}

// List returns one page of quotes matching the filters.
func (s *QuoteService) List(ctx context.Context, params ListQuotesParams) (*domain.QuotePage, error) {
	query := normalizeQuery(params)

	views, total, err := s.quotes.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing quotes: %w", err)
	}

	page := domain.NewQuotePage(views, query.Page, query.Limit, total)

	return &page, nil
}

// ListMine returns one page of quotes owned by the viewer.
func (s *QuoteService) ListMine(ctx context.Context, viewerID uuid.UUID, params ListQuotesParams) (*domain.QuotePage, error) {
	params.Filter.OwnerID = &viewerID
	params.ViewerID = &viewerID

	return s.List(ctx, params)
}

// Update replaces content, author and tags of a quote owned by userID.
func (s *QuoteService) Update(ctx context.Context, id, userID uuid.UUID, content, author string, tags []string) (*domain.QuoteView, error) {
	content = strings.TrimSpace(content)
	author = strings.TrimSpace(author)

	if content == "" {
		return nil, domain.NewValidationError("content", "cannot be empty")
	}

	if author == "" {
		return nil, domain.NewValidationError("author", "cannot be empty")
	}

	existing, err := s.quotes.GetView(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("loading quote: %w", err)
	}

	if existing.OwnerID != userID {
		return nil, domain.NewForbiddenError("update quote", "not the owner")
	}

	quote := &domain.Quote{
		ID:      id,
		Content: content,
		Author:  author,
		OwnerID: existing.OwnerID,
		Tags:    tagsFromNames(tags),
	}

	if err := s.quotes.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("updating quote: %w", err)
	}

	return s.Get(ctx, id, &userID)
}

// Delete removes a quote owned by userID, cascading its votes.
func (s *QuoteService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	existing, err := s.quotes.GetView(ctx, id, nil)
	if err != nil {
		return fmt.Errorf("loading quote: %w", err)
	}

	if existing.OwnerID != userID {
		return domain.NewForbiddenError("delete quote", "not the owner")
	}

	if err := s.quotes.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting quote: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "quote deleted",
		slog.String("quote_id", id.String()),
	)

	return nil
}

// normalizeQuery clamps pagination and fills sort defaults.
func normalizeQuery(params ListQuotesParams) ports.QuoteListQuery {
	page := params.Page
	if page < 1 {
		page = 1
	}

	limit := params.Limit
	if limit < 1 {
		limit = DefaultPageLimit
	}

	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	sortBy := params.SortBy
	if _, ok := map[string]bool{
		domain.SortByCreatedAt:     true,
		domain.SortByUpVoteCount:   true,
		domain.SortByDownVoteCount: true,
	}[sortBy]; !ok {
		sortBy = domain.SortByCreatedAt
	}

	sortOrder := strings.ToLower(params.SortOrder)
	if sortOrder != domain.SortOrderAsc {
		sortOrder = domain.SortOrderDesc
	}

	return ports.QuoteListQuery{
		Filter:    params.Filter,
		Page:      page,
		Limit:     limit,
		SortBy:    sortBy,
		SortOrder: sortOrder,
		ViewerID:  params.ViewerID,
	}
}

// tagsFromNames converts raw tag names, dropping empties after normalization.
func tagsFromNames(names []string) []domain.Tag {
	tags := make([]domain.Tag, 0, len(names))

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		normalized := domain.NormalizeTagName(name)
		if normalized == "" || seen[normalized] {
			continue
		}

		seen[normalized] = true
		tags = append(tags, domain.Tag{Name: normalized})
	}

	return tags
}
