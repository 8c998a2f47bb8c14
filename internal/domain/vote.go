package domain

import (
	"time"

	"github.com/google/uuid"
)

// VoteValue is the polarity of a vote. Zero is never stored; it is only a
// request value meaning "remove my vote".
type VoteValue int

// Valid vote request values.
const (
	VoteDown   VoteValue = -1
	VoteCancel VoteValue = 0
	VoteUp     VoteValue = 1
)

// ValidRequest reports whether v is an acceptable cast-vote request value.
func (v VoteValue) ValidRequest() bool {
	return v == VoteDown || v == VoteCancel || v == VoteUp
}

// Vote is one user's vote on one quote. At most one row exists per
// (QuoteID, UserID) pair; Value is always +1 or -1.
type Vote struct {
	ID        uuid.UUID
	QuoteID   uuid.UUID
	UserID    uuid.UUID
	Value     VoteValue
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VoteAction tells the store which mutation a transition requires.
type VoteAction int

const (
	// VoteActionNone leaves the ledger untouched (idempotent repeat or
	// cancelling a vote that does not exist).
	VoteActionNone VoteAction = iota

	// VoteActionCreate inserts a new vote row.
	VoteActionCreate

	// VoteActionUpdate flips the polarity of the existing row.
	VoteActionUpdate

	// VoteActionDelete removes the existing row.
	VoteActionDelete
)

// VoteTransition is the outcome of applying a requested value to the current
// per-(quote,user) vote state. It pairs the ledger action with the counter
// deltas so both can be applied in one transaction.
type VoteTransition struct {
	Action    VoteAction
	NewValue  VoteValue // meaningful for Create and Update
	UpDelta   int
	DownDelta int

	// ResultValue is the user's vote after the transition; nil means no vote.
	ResultValue *int

	// Message describes the transition for the API response.
	Message string
}

// Changed reports whether the transition mutates any state.
func (t VoteTransition) Changed() bool {
	return t.Action != VoteActionNone
}

// TransitionVote computes the state machine step for a cast-vote request.
// existing is nil when the user has no current vote on the quote. requested
// must already be validated. The nine transitions:
//
//	none    -> +1: create, up+1        none    -> -1: create, down+1
//	none    ->  0: no-op
//	up      -> +1: no-op               up      -> -1: update, up-1 down+1
//	up      ->  0: delete, up-1
//	down    -> -1: no-op               down    -> +1: update, down-1 up+1
//	down    ->  0: delete, down-1
func TransitionVote(existing *Vote, requested VoteValue) VoteTransition {
	if existing == nil {
		if requested == VoteCancel {
			return VoteTransition{Action: VoteActionNone, Message: "no vote to remove"}
		}

		t := VoteTransition{
			Action:   VoteActionCreate,
			NewValue: requested,
			Message:  "upvote recorded",
		}
		if requested == VoteUp {
			t.UpDelta = 1
		} else {
			t.DownDelta = 1
			t.Message = "downvote recorded"
		}
		t.ResultValue = intPtr(int(requested))

		return t
	}

	if requested == existing.Value {
		return VoteTransition{
			Action:      VoteActionNone,
			ResultValue: intPtr(int(existing.Value)),
			Message:     "vote unchanged",
		}
	}

	// Removing the old polarity is common to update and delete.
	t := VoteTransition{}
	if existing.Value == VoteUp {
		t.UpDelta = -1
	} else {
		t.DownDelta = -1
	}

	if requested == VoteCancel {
		t.Action = VoteActionDelete
		t.Message = "vote removed"

		return t
	}

	t.Action = VoteActionUpdate
	t.NewValue = requested
	t.ResultValue = intPtr(int(requested))
	if requested == VoteUp {
		t.UpDelta++
		t.Message = "vote switched from down to up"
	} else {
		t.DownDelta++
		t.Message = "vote switched from up to down"
	}

	return t
}

// VoteResult is what a cast-vote operation reports back to the caller:
// the user's resulting vote (nil when removed or absent) and the quote's
// counters after the transition.
type VoteResult struct {
	QuoteID       uuid.UUID
	Value         *int
	UpVoteCount   int
	DownVoteCount int
	Message       string
}

func intPtr(v int) *int { return &v }
