package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quotewall/quotewall/internal/adapters/http/dto"
	"github.com/quotewall/quotewall/internal/app"
	"github.com/quotewall/quotewall/internal/domain"
)

// VoteHandler handles the vote endpoint.
type VoteHandler struct {
	service *app.VoteService
}

// NewVoteHandler creates a new vote handler.
func NewVoteHandler(service *app.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

// CastVote handles PUT /api/v1/votes
// Applies the caller's vote to a quote. The endpoint is idempotent: sending
// the same value twice leaves the ledger unchanged, and value 0 removes the
// caller's vote.
//
// @Summary Cast, switch or cancel a vote
// @Tags votes
// @Accept json
// @Produce json
// @Param request body dto.CastVoteRequest true "Vote request"
// @Success 200 {object} dto.VoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/votes [put]
func (h *VoteHandler) CastVote(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CastVoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	// Validated by the uuid tag above.
	quoteID, err := uuid.Parse(req.QuoteID)
	if err != nil {
		dto.HandleError(c, domain.NewValidationError("quoteId", "must be a valid UUID"))
		return
	}

	result, err := h.service.CastVote(c.Request.Context(), quoteID, userID, domain.VoteValue(*req.Value))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.VoteResponseFrom(result))
}
