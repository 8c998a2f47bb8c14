package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quotewall/quotewall/internal/adapters/http/dto"
	"github.com/quotewall/quotewall/internal/adapters/http/middleware"
	"github.com/quotewall/quotewall/internal/app"
	"github.com/quotewall/quotewall/internal/domain"
)

// QuoteHandler handles quote CRUD and listing endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// ListQuotes handles GET /api/v1/quotes
// Returns a paginated listing. Filters combine conjunctively; anonymous
// callers get a null userVote on every quote.
//
// @Summary List quotes
// @Description Lists quotes with filtering, sorting and offset pagination
// @Tags quotes
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Param search query string false "Match content or author"
// @Param author query string false "Match author"
// @Param tag query string false "Match tag name"
// @Param sortBy query string false "createdAt, upVoteCount or downVoteCount"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} dto.PaginatedResponse[dto.QuoteResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var req dto.ListQuotesRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	params := listParamsFrom(&req)
	if viewerID, ok := middleware.UserID(c); ok {
		params.ViewerID = &viewerID
	}

	page, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.QuotePageResponseFrom(page))
}

// ListMyQuotes handles GET /api/v1/quotes/me
// Returns the authenticated user's own quotes, newest first by default.
func (h *QuoteHandler) ListMyQuotes(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.ListQuotesRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	page, err := h.service.ListMine(c.Request.Context(), userID, listParamsFrom(&req))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.QuotePageResponseFrom(page))
}

// GetQuote handles GET /api/v1/quotes/:id
// Returns a single quote enriched with the caller's vote.
//
// @Summary Get a quote by ID
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	id, ok := quoteIDParam(c)
	if !ok {
		return
	}

	var viewerID *uuid.UUID
	if userID, authed := middleware.UserID(c); authed {
		viewerID = &userID
	}

	view, err := h.service.Get(c.Request.Context(), id, viewerID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.QuoteResponseFrom(view))
}

// CreateQuote handles POST /api/v1/quotes
// Creates a quote owned by the authenticated user.
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	view, err := h.service.Create(c.Request.Context(), userID, req.Content, req.Author, req.Tags)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.QuoteResponseFrom(view))
}

// UpdateQuote handles PUT /api/v1/quotes/:id
// Replaces the quote's content. Only the owner may update.
func (h *QuoteHandler) UpdateQuote(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	id, ok := quoteIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	view, err := h.service.Update(c.Request.Context(), id, userID, req.Content, req.Author, req.Tags)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.QuoteResponseFrom(view))
}

// DeleteQuote handles DELETE /api/v1/quotes/:id
// Deletes the quote along with its votes. Only the owner may delete.
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	id, ok := quoteIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, userID); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// listParamsFrom converts the bound query into service parameters.
func listParamsFrom(req *dto.ListQuotesRequest) app.ListQuotesParams {
	return app.ListQuotesParams{
		Filter: domain.QuoteFilter{
			Search: req.Search,
			Author: req.Author,
			Tag:    req.Tag,
		},
		Page:      req.GetPage(),
		Limit:     req.GetLimit(),
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
}

// quoteIDParam parses the :id path parameter. Responds with 400 and returns
// false when the value is not a UUID.
func quoteIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		dto.HandleError(c, domain.NewValidationError("id", "must be a valid UUID"))
		return uuid.Nil, false
	}

	return id, true
}

// requireUserID fetches the authenticated user ID set by the auth middleware.
// Responds with 401 and returns false when the request is anonymous.
func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		dto.HandleError(c, domain.NewUnauthorizedError("authentication required"))
		return uuid.Nil, false
	}

	return userID, true
}
