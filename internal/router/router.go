package router

import (
	"github.com/gin-gonic/gin"
	swaggoFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "invox/docs"
	"invox/internal/handler"
	"invox/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware. auditH may
// be nil; the audit route is only registered when the audit log is enabled.
func Setup(
	extractH *handler.ExtractHandler,
	testH *handler.TestHandler,
	healthH *handler.HealthHandler,
	auditH *handler.AuditHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/health", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// Extraction pipeline
	r.POST("/extract-invoice", extractH.Extract)
	r.POST("/extract-invoice/export", extractH.ExtractXLSX)

	// Diagnostics
	r.POST("/test-openai", testH.TestOpenAI)

	// Extraction audit log
	if auditH != nil {
		r.GET("/extractions", auditH.ListRecent)
	}

	// API docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggoFiles.Handler))

	return r
}
