package dto

// DefaultLimit is the default number of items per page.
const DefaultLimit = 10

// MaxLimit is the maximum allowed items per page.
const MaxLimit = 100

// PageRequest represents offset pagination parameters from the query string.
type PageRequest struct {
	// Page is the 1-based page number.
	Page int `form:"page" validate:"omitempty,gte=1"`

	// Limit is the maximum number of items to return (1-100, default 10).
	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetPage returns the page with defaults applied.
func (p *PageRequest) GetPage() int {
	if p.Page < 1 {
		return 1
	}

	return p.Page
}

// GetLimit returns the limit with defaults applied.
func (p *PageRequest) GetLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}

	if p.Limit > MaxLimit {
		return MaxLimit
	}

	return p.Limit
}

// Pagination describes the page position within the full result set.
type Pagination struct {
	// Page is the 1-based page number that was returned.
	Page int `json:"page"`

	// Limit is the page size that was applied.
	Limit int `json:"limit"`

	// TotalItems is the number of items matching the query across all pages.
	TotalItems int `json:"totalItems"`

	// TotalPages is ceil(totalItems / limit); zero when there are no items.
	TotalPages int `json:"totalPages"`

	// HasNextPage indicates a later page exists.
	HasNextPage bool `json:"hasNextPage"`

	// HasPreviousPage indicates an earlier page exists.
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// PaginatedResponse is the envelope for paginated listings.
type PaginatedResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPaginatedResponse builds the envelope. Data is never null in JSON.
func NewPaginatedResponse[T any](data []T, pagination Pagination) *PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}

	return &PaginatedResponse[T]{
		Data:       data,
		Pagination: pagination,
	}
}
