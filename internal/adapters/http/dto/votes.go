package dto

import "github.com/quotewall/quotewall/internal/domain"

// CastVoteRequest is the payload for the vote endpoint. Value 1 records an
// upvote, -1 a downvote and 0 removes the caller's vote.
type CastVoteRequest struct {
	QuoteID string `json:"quoteId" validate:"required,uuid"`
	Value   *int   `json:"value"   validate:"required,oneof=-1 0 1"`
}

// VoteResponse reports the outcome of a vote request together with the
// fresh counters.
type VoteResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	QuoteID       string `json:"quoteId"`
	Value         *int   `json:"value"`
	UpVoteCount   int    `json:"upVoteCount"`
	DownVoteCount int    `json:"downVoteCount"`
}

// VoteResponseFrom converts a domain vote result to its API representation.
func VoteResponseFrom(result *domain.VoteResult) VoteResponse {
	return VoteResponse{
		Success:       true,
		Message:       result.Message,
		QuoteID:       result.QuoteID.String(),
		Value:         result.Value,
		UpVoteCount:   result.UpVoteCount,
		DownVoteCount: result.DownVoteCount,
	}
}
