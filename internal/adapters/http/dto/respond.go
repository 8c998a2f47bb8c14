package dto

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/quotewall/quotewall/internal/domain"
)

// ContextKeyTraceID is the gin context key under which the trace ID is stored.
const ContextKeyTraceID = "trace_id"

// GetTraceID extracts the trace ID for the current request. It prefers the
// gin context value, then the active OpenTelemetry span, then the
// X-Request-ID header. Returns empty string when none is available.
func GetTraceID(c *gin.Context) string {
	if v, exists := c.Get(ContextKeyTraceID); exists {
		if s, ok := v.(string); ok {
			return s
		}

		return ""
	}

	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	return c.GetHeader("X-Request-ID")
}

// MapError maps a domain error to an HTTP status code and error response.
// Unknown errors are mapped to 500 Internal Server Error with a generic message.
func MapError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, err.Error())

	case domain.IsWriteConflict(err):
		// Retries are exhausted by the time this surfaces; the client may
		// safely resubmit.
		return http.StatusConflict, NewErrorResponse(
			ErrorCodeWriteConflict,
			"the operation conflicted with a concurrent update, please retry",
		)

	case domain.IsUnauthorized(err):
		return http.StatusUnauthorized, NewErrorResponse(ErrorCodeUnauthorized, err.Error())

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		// Extract field details if available
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{
				validationErr.Field: validationErr.Message,
			}
		}

		return http.StatusBadRequest, resp

	case domain.IsForbidden(err):
		return http.StatusForbidden, NewErrorResponse(ErrorCodeForbidden, err.Error())

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable, err.Error())

	default:
		// Unknown errors get a generic message to avoid leaking internals
		return http.StatusInternalServerError, NewErrorResponse(
			ErrorCodeInternal,
			"an internal error occurred",
		)
	}
}

// HandleError writes the error response for err. It understands binding and
// validation failures produced by BindAndValidate as well as domain errors.
func HandleError(c *gin.Context, err error) {
	var (
		status int
		resp   *ErrorResponse
	)

	switch {
	case IsValidationError(err):
		status = http.StatusBadRequest
		resp = NewErrorResponseWithDetails(
			ErrorCodeValidation,
			"request validation failed",
			ValidationErrors(err),
		)

	case errors.Is(err, ErrBinding):
		status = http.StatusBadRequest
		resp = NewErrorResponse(ErrorCodeBadRequest, "request could not be parsed")

	default:
		status, resp = MapError(err)
	}

	resp.TraceID = GetTraceID(c)
	c.JSON(status, resp)
}
