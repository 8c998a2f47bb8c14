// Package domain contains core business entities and rules.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Quote is a user-submitted quotation. The vote counters are denormalized:
// UpVoteCount and DownVoteCount always equal the number of +1 and -1 vote
// rows for this quote, and are maintained incrementally by the vote engine,
// never recomputed on read.
type Quote struct {
	ID            uuid.UUID
	Content       string
	Author        string
	OwnerID       uuid.UUID
	UpVoteCount   int
	DownVoteCount int
	Tags          []Tag
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Tag is a category label attached to quotes. Names are unique
// case-insensitively and stored lower-cased.
type Tag struct {
	ID   uuid.UUID
	Name string
}

// NormalizeTagName lower-cases and trims a tag name for storage and matching.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// QuoteView is a quote enriched for a specific reader: UserVote carries the
// requesting user's current vote value, or nil when the reader has not voted.
type QuoteView struct {
	Quote
	Owner    UserRef
	UserVote *int
}

// UserRef is the subset of user fields embedded in quote reads.
type UserRef struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// QuoteFilter holds quote listing filters. Filters combine conjunctively;
// zero values mean "no filter".
type QuoteFilter struct {
	Search  string
	Author  string
	Tag     string
	OwnerID *uuid.UUID
}

// Sort fields and orders accepted by quote listings.
const (
	SortByCreatedAt     = "createdAt"
	SortByUpVoteCount   = "upVoteCount"
	SortByDownVoteCount = "downVoteCount"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// QuotePage is one page of a quote listing together with its pagination
// envelope. TotalPages is zero when nothing matched.
type QuotePage struct {
	Data            []QuoteView
	Page            int
	Limit           int
	TotalItems      int
	TotalPages      int
	HasNextPage     bool
	HasPreviousPage bool
}

// NewQuotePage derives the pagination envelope from the match count.
func NewQuotePage(data []QuoteView, page, limit, totalItems int) QuotePage {
	totalPages := 0
	if limit > 0 && totalItems > 0 {
		totalPages = (totalItems + limit - 1) / limit
	}

	return QuotePage{
		Data:            data,
		Page:            page,
		Limit:           limit,
		TotalItems:      totalItems,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}
