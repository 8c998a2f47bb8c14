package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func existingVote(value VoteValue) *Vote {
	return &Vote{
		ID:      uuid.New(),
		QuoteID: uuid.New(),
		UserID:  uuid.New(),
		Value:   value,
	}
}

func TestTransitionVote_AllTransitions(t *testing.T) {
	tests := []struct {
		name        string
		existing    *Vote
		requested   VoteValue
		wantAction  VoteAction
		wantUp      int
		wantDown    int
		wantValue   *int
		wantMessage string
	}{
		{
			name:        "no vote, upvote",
			existing:    nil,
			requested:   VoteUp,
			wantAction:  VoteActionCreate,
			wantUp:      1,
			wantValue:   intPtr(1),
			wantMessage: "upvote recorded",
		},
		{
			name:        "no vote, downvote",
			existing:    nil,
			requested:   VoteDown,
			wantAction:  VoteActionCreate,
			wantDown:    1,
			wantValue:   intPtr(-1),
			wantMessage: "downvote recorded",
		},
		{
			name:        "no vote, cancel is a no-op",
			existing:    nil,
			requested:   VoteCancel,
			wantAction:  VoteActionNone,
			wantMessage: "no vote to remove",
		},
		{
			name:        "upvoted, upvote again is idempotent",
			existing:    existingVote(VoteUp),
			requested:   VoteUp,
			wantAction:  VoteActionNone,
			wantValue:   intPtr(1),
			wantMessage: "vote unchanged",
		},
		{
			name:        "upvoted, switch to downvote",
			existing:    existingVote(VoteUp),
			requested:   VoteDown,
			wantAction:  VoteActionUpdate,
			wantUp:      -1,
			wantDown:    1,
			wantValue:   intPtr(-1),
			wantMessage: "vote switched from up to down",
		},
		{
			name:        "upvoted, cancel",
			existing:    existingVote(VoteUp),
			requested:   VoteCancel,
			wantAction:  VoteActionDelete,
			wantUp:      -1,
			wantMessage: "vote removed",
		},
		{
			name:        "downvoted, downvote again is idempotent",
			existing:    existingVote(VoteDown),
			requested:   VoteDown,
			wantAction:  VoteActionNone,
			wantValue:   intPtr(-1),
			wantMessage: "vote unchanged",
		},
		{
			name:        "downvoted, switch to upvote",
			existing:    existingVote(VoteDown),
			requested:   VoteUp,
			wantAction:  VoteActionUpdate,
			wantUp:      1,
			wantDown:    -1,
			wantValue:   intPtr(1),
			wantMessage: "vote switched from down to up",
		},
		{
			name:        "downvoted, cancel",
			existing:    existingVote(VoteDown),
			requested:   VoteCancel,
			wantAction:  VoteActionDelete,
			wantDown:    -1,
			wantMessage: "vote removed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TransitionVote(tt.existing, tt.requested)

			assert.Equal(t, tt.wantAction, got.Action)
			assert.Equal(t, tt.wantUp, got.UpDelta)
			assert.Equal(t, tt.wantDown, got.DownDelta)
			assert.Equal(t, tt.wantMessage, got.Message)

			if tt.wantValue == nil {
				assert.Nil(t, got.ResultValue)
			} else {
				require.NotNil(t, got.ResultValue)
				assert.Equal(t, *tt.wantValue, *got.ResultValue)
			}

			if got.Action == VoteActionCreate || got.Action == VoteActionUpdate {
				assert.Equal(t, tt.requested, got.NewValue)
			}
		})
	}
}

func TestTransitionVote_RoundTripRestoresDeltas(t *testing.T) {
	// Upvote then cancel must sum to zero deltas on both counters.
	up := TransitionVote(nil, VoteUp)
	cancel := TransitionVote(existingVote(VoteUp), VoteCancel)

	assert.Equal(t, 0, up.UpDelta+cancel.UpDelta)
	assert.Equal(t, 0, up.DownDelta+cancel.DownDelta)
	assert.Nil(t, cancel.ResultValue)
}

func TestTransitionVote_SwitchMovesExactlyOneUnitEach(t *testing.T) {
	got := TransitionVote(existingVote(VoteUp), VoteDown)

	assert.Equal(t, -1, got.UpDelta)
	assert.Equal(t, 1, got.DownDelta)
}

func TestVoteValue_ValidRequest(t *testing.T) {
	assert.True(t, VoteUp.ValidRequest())
	assert.True(t, VoteDown.ValidRequest())
	assert.True(t, VoteCancel.ValidRequest())
	assert.False(t, VoteValue(2).ValidRequest())
	assert.False(t, VoteValue(-2).ValidRequest())
}

func TestNewQuotePage(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		totalItems int
		wantPages  int
		wantNext   bool
		wantPrev   bool
	}{
		{name: "middle page", page: 2, limit: 10, totalItems: 25, wantPages: 3, wantNext: true, wantPrev: true},
		{name: "first page", page: 1, limit: 10, totalItems: 25, wantPages: 3, wantNext: true, wantPrev: false},
		{name: "last page", page: 3, limit: 10, totalItems: 25, wantPages: 3, wantNext: false, wantPrev: true},
		{name: "exact fit", page: 2, limit: 5, totalItems: 10, wantPages: 2, wantNext: false, wantPrev: true},
		{name: "empty result", page: 1, limit: 10, totalItems: 0, wantPages: 0, wantNext: false, wantPrev: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewQuotePage(nil, tt.page, tt.limit, tt.totalItems)

			assert.Equal(t, tt.wantPages, got.TotalPages)
			assert.Equal(t, tt.wantNext, got.HasNextPage)
			assert.Equal(t, tt.wantPrev, got.HasPreviousPage)
			assert.Equal(t, tt.totalItems, got.TotalItems)
		})
	}
}

func TestDomainErrors_Taxonomy(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("quote", "abc")))
	assert.True(t, IsConflict(NewConflictError("user", "email already registered")))
	assert.True(t, IsWriteConflict(NewWriteConflictError("cast vote", assert.AnError)))
	assert.True(t, IsValidation(NewValidationError("value", "must be -1, 0 or 1")))
	assert.True(t, IsUnauthorized(NewUnauthorizedError("token expired")))
	assert.True(t, IsForbidden(NewForbiddenError("update quote", "not the owner")))
	assert.True(t, IsUnavailable(NewUnavailableError("postgres", "connection refused")))

	// Write conflicts are their own category, not generic conflicts.
	assert.False(t, IsConflict(NewWriteConflictError("cast vote", assert.AnError)))
}
