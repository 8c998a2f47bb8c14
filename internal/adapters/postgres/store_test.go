package postgres

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/quotewall/quotewall/internal/domain"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(t *testing.T, got error)
	}{
		{
			name: "unique violation maps to conflict",
			err:  &pq.Error{Code: pq.ErrorCode(codeUniqueViolation)},
			check: func(t *testing.T, got error) {
				assert.True(t, domain.IsConflict(got))
			},
		},
		{
			name: "serialization failure maps to write conflict",
			err:  &pq.Error{Code: pq.ErrorCode(codeSerializationFailure)},
			check: func(t *testing.T, got error) {
				assert.True(t, domain.IsWriteConflict(got))
			},
		},
		{
			name: "deadlock maps to write conflict",
			err:  &pq.Error{Code: pq.ErrorCode(codeDeadlockDetected)},
			check: func(t *testing.T, got error) {
				assert.True(t, domain.IsWriteConflict(got))
			},
		},
		{
			name: "other errors pass through wrapped",
			err:  errors.New("connection reset"),
			check: func(t *testing.T, got error) {
				assert.False(t, domain.IsConflict(got))
				assert.False(t, domain.IsWriteConflict(got))
				assert.Contains(t, got.Error(), "connection reset")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError("test op", tt.err)
			tt.check(t, got)
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: pq.ErrorCode(codeUniqueViolation)}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: pq.ErrorCode(codeDeadlockDetected)}))
	assert.False(t, isUniqueViolation(errors.New("not a pq error")))
}

func TestBuildFilter(t *testing.T) {
	ownerID := uuid.New()

	tests := []struct {
		name      string
		filter    domain.QuoteFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "no filters",
			filter:    domain.QuoteFilter{},
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "search matches content or author",
			filter:    domain.QuoteFilter{Search: "wisdom"},
			wantWhere: " WHERE (q.content ILIKE $1 OR q.author ILIKE $1)",
			wantArgs:  []any{"%wisdom%"},
		},
		{
			name:      "author filter",
			filter:    domain.QuoteFilter{Author: "Twain"},
			wantWhere: " WHERE q.author ILIKE $1",
			wantArgs:  []any{"%Twain%"},
		},
		{
			name:      "tag filter is normalized",
			filter:    domain.QuoteFilter{Tag: "  Life "},
			wantWhere: " WHERE EXISTS (SELECT 1 FROM quote_tags qt JOIN tags t ON t.id = qt.tag_id WHERE qt.quote_id = q.id AND t.name = $1)",
			wantArgs:  []any{"life"},
		},
		{
			name:      "owner filter",
			filter:    domain.QuoteFilter{OwnerID: &ownerID},
			wantWhere: " WHERE q.owner_id = $1",
			wantArgs:  []any{ownerID},
		},
		{
			name:      "filters are conjunctive with sequential args",
			filter:    domain.QuoteFilter{Search: "life", Author: "Twain", OwnerID: &ownerID},
			wantWhere: " WHERE (q.content ILIKE $1 OR q.author ILIKE $1) AND q.author ILIKE $2 AND q.owner_id = $3",
			wantArgs:  []any{"%life%", "%Twain%", ownerID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildFilter(tt.filter)

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestSortColumns_WhitelistOnly(t *testing.T) {
	assert.Equal(t, "q.created_at", sortColumns[domain.SortByCreatedAt])
	assert.Equal(t, "q.up_vote_count", sortColumns[domain.SortByUpVoteCount])
	assert.Equal(t, "q.down_vote_count", sortColumns[domain.SortByDownVoteCount])

	_, ok := sortColumns["content; DROP TABLE quotes"]
	assert.False(t, ok)
}
