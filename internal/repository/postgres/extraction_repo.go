package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"invox/internal/domain"
	"invox/internal/port"
)

type extractionRepo struct {
	db *sqlx.DB
}

// NewExtractionRepo creates the PostgreSQL-backed extraction audit log.
func NewExtractionRepo(db *sqlx.DB) port.ExtractionLogRepository {
	return &extractionRepo{db: db}
}

func (r *extractionRepo) Create(ctx context.Context, rec *domain.ExtractionRecord) error {
	query := `
		INSERT INTO extractions (id, filename, file_size, status, failed_stage, error_code, line_item_count, duration_ms)
		VALUES (:id, :filename, :file_size, :status, :failed_stage, :error_code, :line_item_count, :duration_ms)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("inserting extraction record: %w", err)
	}
	return nil
}

func (r *extractionRepo) ListRecent(ctx context.Context, limit int) ([]domain.ExtractionRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var recs []domain.ExtractionRecord
	query := `
		SELECT id, filename, file_size, status, failed_stage, error_code, line_item_count, duration_ms, created_at
		FROM extractions
		ORDER BY created_at DESC
		LIMIT $1`
	if err := r.db.SelectContext(ctx, &recs, query, limit); err != nil {
		return nil, fmt.Errorf("listing extraction records: %w", err)
	}
	return recs, nil
}
