package domain

import "errors"

var (
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrEmptyExtraction      = errors.New("document produced no extractable text")
	ErrUpstreamTimeout      = errors.New("upstream service timed out")
	ErrUpstreamUnavailable  = errors.New("upstream service unavailable")
	ErrUpstreamRejected     = errors.New("upstream service rejected the request")
	ErrMalformedModelOutput = errors.New("model output is not valid JSON")
	ErrValidationFailed     = errors.New("structured payload failed validation")
)

// ErrorCode maps a domain error to its stable API error code. Unknown errors
// are defects and map to INTERNAL_ERROR.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedFileType):
		return "UNSUPPORTED_FILE_TYPE"
	case errors.Is(err, ErrFileTooLarge):
		return "FILE_TOO_LARGE"
	case errors.Is(err, ErrEmptyExtraction):
		return "EMPTY_EXTRACTION"
	case errors.Is(err, ErrUpstreamTimeout):
		return "UPSTREAM_TIMEOUT"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "UPSTREAM_UNAVAILABLE"
	case errors.Is(err, ErrUpstreamRejected):
		return "UPSTREAM_REJECTED"
	case errors.Is(err, ErrMalformedModelOutput):
		return "MALFORMED_MODEL_OUTPUT"
	case errors.Is(err, ErrValidationFailed):
		return "VALIDATION_FAILED"
	default:
		return "INTERNAL_ERROR"
	}
}
