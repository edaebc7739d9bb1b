package port

import (
	"context"

	"invox/internal/domain"
)

// TextExtractor abstracts the OCR/document-understanding service that turns
// an uploaded document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, file *domain.UploadedFile) (string, error)
}
