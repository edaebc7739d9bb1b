package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db        *sqlx.DB // nil when the audit log is disabled
	ocrKeySet bool
	llmKeySet bool
}

// NewHealthHandler creates a new HealthHandler. db may be nil.
func NewHealthHandler(db *sqlx.DB, ocrKeySet, llmKeySet bool) *HealthHandler {
	return &HealthHandler{db: db, ocrKeySet: ocrKeySet, llmKeySet: llmKeySet}
}

// Liveness handles GET /health. It reports process liveness only and never
// calls an external service.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":               "healthy",
		"llmwhisperer_key_set": h.ocrKeySet,
		"openai_key_set":       h.llmKeySet,
	})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
