// Package pipeline orchestrates the extraction flow: validate the upload,
// extract text, structure it with the model, and normalize the result. Stages
// run in a fixed linear order; the first failure halts the run.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"invox/internal/config"
	"invox/internal/domain"
	"invox/internal/normalizer"
	"invox/internal/port"
)

// Stage names, in execution order.
const (
	StageValidating  = "validating"
	StageExtracting  = "extracting"
	StageStructuring = "structuring"
	StageNormalizing = "normalizing"
)

// StageError reports which stage a pipeline run failed in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Pipeline wires the extraction stages together. Retry behavior lives inside
// the clients; the pipeline only enforces the overall wall-clock timeout.
type Pipeline struct {
	extractor  port.TextExtractor
	structurer port.InvoiceStructurer
	normalizer *normalizer.Normalizer
	maxBytes   int64
	timeout    time.Duration

	auditRepo port.ExtractionLogRepository
	storage   port.ObjectStorage
	archive   *config.ArchiveConfig
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithAuditLog records one ExtractionRecord per run, best effort.
func WithAuditLog(repo port.ExtractionLogRepository) Option {
	return func(p *Pipeline) { p.auditRepo = repo }
}

// WithArchive uploads the original document to object storage after a
// successful run, best effort.
func WithArchive(storage port.ObjectStorage, cfg *config.ArchiveConfig) Option {
	return func(p *Pipeline) {
		p.storage = storage
		p.archive = cfg
	}
}

// New creates a Pipeline.
func New(
	extractor port.TextExtractor,
	structurer port.InvoiceStructurer,
	norm *normalizer.Normalizer,
	uploadCfg *config.UploadConfig,
	pipelineCfg *config.PipelineConfig,
	opts ...Option,
) *Pipeline {
	timeout := time.Duration(pipelineCfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Minute
	}
	p := &Pipeline{
		extractor:  extractor,
		structurer: structurer,
		normalizer: norm,
		maxBytes:   uploadCfg.MaxFileSizeMB * 1024 * 1024,
		timeout:    timeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes all stages for one uploaded file. It returns either a complete
// InvoiceRecord or a StageError; no partial result is ever produced. The
// overall timeout spans every stage and cancels in-flight upstream calls.
func (p *Pipeline) Run(ctx context.Context, file *domain.UploadedFile) (*domain.InvoiceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	record, err := p.run(ctx, file)
	if err != nil {
		var se *StageError
		errors.As(err, &se)
		log.Printf("pipeline.Run: %s failed after %s at stage %s: %v", file.Filename, time.Since(start), se.Stage, se.Err)
		p.record(file, domain.ExtractionFailed, se, 0, time.Since(start))
		return nil, err
	}

	log.Printf("pipeline.Run: %s completed in %s (%d line items, %d warnings)",
		file.Filename, time.Since(start), len(record.LineItems), len(record.Warnings))
	p.record(file, domain.ExtractionSucceeded, nil, len(record.LineItems), time.Since(start))
	p.archiveOriginal(file)
	return record, nil
}

func (p *Pipeline) run(ctx context.Context, file *domain.UploadedFile) (*domain.InvoiceRecord, error) {
	if err := ValidateUpload(file, p.maxBytes); err != nil {
		return nil, &StageError{Stage: StageValidating, Err: err}
	}

	text, err := p.extractor.Extract(ctx, file)
	if err != nil {
		return nil, &StageError{Stage: StageExtracting, Err: timeoutAware(ctx, err)}
	}

	candidate, err := p.structurer.Structure(ctx, text)
	if err != nil {
		return nil, &StageError{Stage: StageStructuring, Err: timeoutAware(ctx, err)}
	}

	record, err := p.normalizer.Normalize(candidate)
	if err != nil {
		return nil, &StageError{Stage: StageNormalizing, Err: err}
	}
	return record, nil
}

// timeoutAware folds an overall-deadline expiry into the upstream timeout
// class so it maps to a stable error code.
func timeoutAware(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, domain.ErrUpstreamTimeout)
	}
	return err
}

// record writes the audit row if an audit repository is configured. Failures
// are logged, never surfaced: auditing must not affect the response.
func (p *Pipeline) record(file *domain.UploadedFile, status domain.ExtractionStatus, se *StageError, items int, took time.Duration) {
	if p.auditRepo == nil {
		return
	}
	rec := &domain.ExtractionRecord{
		ID:            uuid.New(),
		Filename:      file.Filename,
		FileSize:      int64(len(file.Data)),
		Status:        status,
		LineItemCount: items,
		DurationMS:    took.Milliseconds(),
	}
	if se != nil {
		rec.FailedStage = se.Stage
		rec.ErrorCode = domain.ErrorCode(se.Err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.auditRepo.Create(ctx, rec); err != nil {
		log.Printf("pipeline.record: failed to write audit row for %s: %v", file.Filename, err)
	}
}

// archiveOriginal uploads the source document to object storage when archival
// is enabled. It runs detached from the request so a slow or failing upload
// never delays the response.
func (p *Pipeline) archiveOriginal(file *domain.UploadedFile) {
	if p.storage == nil || p.archive == nil || !p.archive.Enabled {
		return
	}
	data := file.Data
	key := fmt.Sprintf("%s/%s/%s", p.archive.KeyPrefix, time.Now().UTC().Format("2006/01/02"), file.Filename)
	contentType := file.ContentType
	bucket := p.archive.Bucket

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_, err := p.storage.Upload(ctx, port.UploadInput{
			Bucket:      bucket,
			Key:         key,
			Body:        bytes.NewReader(data),
			ContentType: contentType,
			Size:        int64(len(data)),
		})
		if err != nil {
			log.Printf("pipeline.archiveOriginal: upload of %s failed: %v", key, err)
			return
		}
		log.Printf("pipeline.archiveOriginal: archived %s", key)
	}()
}
