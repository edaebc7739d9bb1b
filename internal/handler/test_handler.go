package handler

import (
	"github.com/gin-gonic/gin"

	"invox/internal/port"
)

// TestHandler handles connectivity checks against the structuring service.
type TestHandler struct {
	structurer port.InvoiceStructurer
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(s port.InvoiceStructurer) *TestHandler {
	return &TestHandler{structurer: s}
}

// TestOpenAI handles POST /test-openai
// @Summary Verify connectivity and credentials for the structuring service
// @Tags diagnostics
// @Produce json
// @Success 200 {object} APIResponse "Service reachable"
// @Failure 502 {object} APIResponse "Service unreachable or credentials rejected"
// @Router /test-openai [post]
func (h *TestHandler) TestOpenAI(c *gin.Context) {
	reply, err := h.structurer.Ping(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"response": reply})
}
