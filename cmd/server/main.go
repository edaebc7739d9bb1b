package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"invox/internal/config"
	"invox/internal/extractor/whisper"
	"invox/internal/handler"
	"invox/internal/normalizer"
	"invox/internal/pipeline"
	"invox/internal/repository/postgres"
	"invox/internal/router"
	s3storage "invox/internal/storage/s3"
	"invox/internal/structurer/openai"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Upstream clients
	extractor := whisper.NewClient(&cfg.OCR)
	structClient := openai.NewClient(&cfg.LLM)
	norm := normalizer.New()

	var opts []pipeline.Option
	var auditH *handler.AuditHandler

	// Optional extraction audit log
	db, err := optionalDB(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		repo := postgres.NewExtractionRepo(db)
		opts = append(opts, pipeline.WithAuditLog(repo))
		auditH = handler.NewAuditHandler(repo)
	}

	// Optional original-document archival
	if cfg.Archive.Enabled {
		storage, err := s3storage.NewS3Client(&cfg.Archive)
		if err != nil {
			return fmt.Errorf("failed to initialize archive storage: %w", err)
		}
		opts = append(opts, pipeline.WithArchive(storage, &cfg.Archive))
		log.Printf("archival enabled (bucket %s)", cfg.Archive.Bucket)
	}

	p := pipeline.New(extractor, structClient, norm, &cfg.Upload, &cfg.Pipeline, opts...)

	// Handlers
	extractH := handler.NewExtractHandler(p)
	testH := handler.NewTestHandler(structClient)
	healthH := handler.NewHealthHandler(db, cfg.OCR.APIKey != "", cfg.LLM.APIKey != "")

	r := router.Setup(extractH, testH, healthH, auditH, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on %s (model %s)", cfg.Server.Port, cfg.LLM.Model)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func optionalDB(cfg *config.Config) (*sqlx.DB, error) {
	if !cfg.DB.Enabled {
		return nil, nil
	}
	d, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Printf("extraction audit log enabled (db %s)", cfg.DB.Name)
	return d, nil
}
