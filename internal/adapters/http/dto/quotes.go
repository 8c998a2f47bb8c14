package dto

import (
	"time"

	"github.com/quotewall/quotewall/internal/domain"
)

// CreateQuoteRequest is the payload for creating a quote.
type CreateQuoteRequest struct {
	Content string   `json:"content" validate:"required,notempty,max=2000"`
	Author  string   `json:"author"  validate:"required,notempty,max=200"`
	Tags    []string `json:"tags"    validate:"omitempty,max=10,dive,notempty,max=50"`
}

// UpdateQuoteRequest is the payload for replacing a quote's content.
type UpdateQuoteRequest struct {
	Content string   `json:"content" validate:"required,notempty,max=2000"`
	Author  string   `json:"author"  validate:"required,notempty,max=200"`
	Tags    []string `json:"tags"    validate:"omitempty,max=10,dive,notempty,max=50"`
}

// ListQuotesRequest carries the listing query parameters.
type ListQuotesRequest struct {
	PageRequest
	Search    string `form:"search"    validate:"omitempty,max=200"`
	Author    string `form:"author"    validate:"omitempty,max=200"`
	Tag       string `form:"tag"       validate:"omitempty,max=50"`
	SortBy    string `form:"sortBy"    validate:"omitempty,oneof=createdAt upVoteCount downVoteCount"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc ASC DESC"`
}

// OwnerResponse identifies the user who posted a quote.
type OwnerResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// QuoteResponse is the API representation of a quote. UserVote is null when
// the caller is anonymous or has not voted on this quote.
type QuoteResponse struct {
	ID            string        `json:"id"`
	Content       string        `json:"content"`
	Author        string        `json:"author"`
	Tags          []string      `json:"tags"`
	UpVoteCount   int           `json:"upVoteCount"`
	DownVoteCount int           `json:"downVoteCount"`
	UserVote      *int          `json:"userVote"`
	Owner         OwnerResponse `json:"owner"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// QuoteResponseFrom converts a domain view to its API representation.
func QuoteResponseFrom(view *domain.QuoteView) QuoteResponse {
	tags := make([]string, 0, len(view.Tags))
	for _, tag := range view.Tags {
		tags = append(tags, tag.Name)
	}

	return QuoteResponse{
		ID:            view.ID.String(),
		Content:       view.Content,
		Author:        view.Author,
		Tags:          tags,
		UpVoteCount:   view.UpVoteCount,
		DownVoteCount: view.DownVoteCount,
		UserVote:      view.UserVote,
		Owner: OwnerResponse{
			ID:   view.Owner.ID.String(),
			Name: view.Owner.Name,
		},
		CreatedAt: view.CreatedAt,
		UpdatedAt: view.UpdatedAt,
	}
}

// QuotePageResponseFrom converts a domain page to the paginated envelope.
func QuotePageResponseFrom(page *domain.QuotePage) *PaginatedResponse[QuoteResponse] {
	data := make([]QuoteResponse, 0, len(page.Data))
	for i := range page.Data {
		data = append(data, QuoteResponseFrom(&page.Data[i]))
	}

	return NewPaginatedResponse(data, Pagination{
		Page:            page.Page,
		Limit:           page.Limit,
		TotalItems:      page.TotalItems,
		TotalPages:      page.TotalPages,
		HasNextPage:     page.HasNextPage,
		HasPreviousPage: page.HasPreviousPage,
	})
}
