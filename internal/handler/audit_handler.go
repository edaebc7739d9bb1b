package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"invox/internal/port"
)

// AuditHandler exposes the extraction audit log. It is only registered when
// the audit database is enabled.
type AuditHandler struct {
	repo port.ExtractionLogRepository
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(repo port.ExtractionLogRepository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// ListRecent handles GET /extractions
// @Summary List recent extraction runs
// @Description Returns operational metadata for recent pipeline runs (no document content)
// @Tags audit
// @Produce json
// @Param limit query int false "Maximum number of rows (default 50, max 200)"
// @Success 200 {object} APIResponse{data=[]domain.ExtractionRecord}
// @Failure 500 {object} APIResponse "Audit database unavailable"
// @Router /extractions [get]
func (h *AuditHandler) ListRecent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	recs, err := h.repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, recs)
}
