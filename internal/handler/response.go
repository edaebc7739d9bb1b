package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"invox/internal/domain"
)

// APIResponse is the standard envelope for all API responses. Exactly one of
// Data and Error is present, gated by Success.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error
// codes. Raw upstream error bodies never reach the caller: only the stable
// code and a human-readable summary do.
func MapDomainError(err error) (status int, code, msg string) {
	code = domain.ErrorCode(err)
	switch {
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, code, "unsupported file type; allowed: pdf, xlsx, xls"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, code, "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrEmptyExtraction):
		return http.StatusUnprocessableEntity, code, "no text could be extracted from the document"
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout, code, "an upstream service did not respond in time; please try again"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, code, "an upstream service is temporarily unavailable; please try again"
	case errors.Is(err, domain.ErrUpstreamRejected):
		return http.StatusBadGateway, code, "an upstream service rejected the document"
	case errors.Is(err, domain.ErrMalformedModelOutput):
		return http.StatusBadGateway, code, "the model returned an unparseable response"
	case errors.Is(err, domain.ErrValidationFailed):
		return http.StatusUnprocessableEntity, code, "extracted data did not match the expected invoice structure"
	default:
		return http.StatusInternalServerError, code, "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] pipeline error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
