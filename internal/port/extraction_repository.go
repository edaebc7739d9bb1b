package port

import (
	"context"

	"invox/internal/domain"
)

// ExtractionLogRepository persists operational audit rows for pipeline runs.
type ExtractionLogRepository interface {
	Create(ctx context.Context, rec *domain.ExtractionRecord) error
	ListRecent(ctx context.Context, limit int) ([]domain.ExtractionRecord, error)
}
