package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/quotewall/quotewall/internal/adapters/http/dto"
)

const (
	// ContextKeyUserID is the gin context key for the authenticated user ID.
	ContextKeyUserID = "user_id"

	bearerPrefix = "Bearer "
)

// TokenParser validates an access token and returns the subject user ID.
// The auth service implements this interface.
type TokenParser interface {
	ParseAccessToken(token string) (uuid.UUID, error)
}

// RequireAuth returns middleware that requires a valid bearer token.
// On success the authenticated user ID is stored in the gin context.
func RequireAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortWithUnauthorized(c, "authentication required")
			return
		}

		userID, err := parser.ParseAccessToken(token)
		if err != nil {
			abortWithUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// OptionalAuth returns middleware that attaches the user ID when a valid
// bearer token is present and leaves the request anonymous otherwise.
// A token that is present but invalid is still rejected, so clients never
// get an anonymous view of a request they believed was authenticated.
func OptionalAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		userID, err := parser.ParseAccessToken(token)
		if err != nil {
			abortWithUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// UserID retrieves the authenticated user ID from the gin context.
// The second return value is false for anonymous requests.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(ContextKeyUserID); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}

	return uuid.Nil, false
}

// bearerToken extracts the token from the Authorization header.
// Returns empty string when the header is missing or not a bearer scheme.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}

	return ""
}

// abortWithUnauthorized aborts with a 401 Unauthorized response.
func abortWithUnauthorized(c *gin.Context, message string) {
	errResp := dto.NewErrorResponse(dto.ErrorCodeUnauthorized, message)

	// Add trace ID if available
	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		errResp.TraceID = span.SpanContext().TraceID().String()
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, errResp)
}
