package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"invox/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unsupported file type", domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{"file too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"empty extraction", domain.ErrEmptyExtraction, http.StatusUnprocessableEntity, "EMPTY_EXTRACTION"},
		{"upstream timeout", domain.ErrUpstreamTimeout, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"},
		{"upstream unavailable", domain.ErrUpstreamUnavailable, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"},
		{"upstream rejected", domain.ErrUpstreamRejected, http.StatusBadGateway, "UPSTREAM_REJECTED"},
		{"malformed model output", domain.ErrMalformedModelOutput, http.StatusBadGateway, "MALFORMED_MODEL_OUTPUT"},
		{"validation failed", domain.ErrValidationFailed, http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, msg := MapDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestMapDomainErrorUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("stage extracting: whisper submit returned 503: %w", domain.ErrUpstreamUnavailable)
	status, code, _ := MapDomainError(wrapped)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", code)
}

func TestMapDomainErrorHidesUpstreamDetail(t *testing.T) {
	wrapped := fmt.Errorf("openai API error (status 500): internal stack trace: %w", domain.ErrUpstreamUnavailable)
	_, _, msg := MapDomainError(wrapped)
	assert.NotContains(t, msg, "stack trace")
}
