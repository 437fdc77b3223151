package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes of the response envelope
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeJSONParseError     = "JSON_PARSE_ERROR"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

var (
	// ErrInvalidQuery is returned for malformed query parameters
	ErrInvalidQuery = errors.New("invalid query parameter")
	// ErrInvalidBody is returned when the body is not a JSON array of strings
	ErrInvalidBody = errors.New("invalid request body")
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	StatusCode int
	Code       string
	Message    string
}

// MapRequestError maps request decoding errors and abandoned batches to
// HTTP error responses. Per-item inference failures never reach this point.
func MapRequestError(err error) ErrorResponse {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return ErrorResponse{
			StatusCode: http.StatusRequestEntityTooLarge,
			Code:       CodePayloadTooLarge,
			Message:    fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit),
		}
	case errors.Is(err, ErrInvalidQuery):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       CodeInvalidRequest,
			Message:    err.Error(),
		}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorResponse{
			StatusCode: http.StatusServiceUnavailable,
			Code:       CodeServiceUnavailable,
			Message:    "request cancelled before the batch completed",
		}
	case errors.Is(err, ErrInvalidBody):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       CodeJSONParseError,
			Message:    "request body must be a JSON array of strings",
		}
	default:
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       CodeInternalError,
			Message:    "internal server error",
		}
	}
}

// HandleRequestError sends the HTTP response matching err
func HandleRequestError(c *gin.Context, err error) {
	errResp := MapRequestError(err)
	respondError(c, errResp.StatusCode, errResp.Code, errResp.Message)
}
