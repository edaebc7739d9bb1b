package handler

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"invox/internal/domain"
	"invox/internal/export"
	"invox/internal/pipeline"
)

// ExtractHandler handles invoice extraction endpoints.
type ExtractHandler struct {
	pipeline *pipeline.Pipeline
}

// NewExtractHandler creates a new ExtractHandler.
func NewExtractHandler(p *pipeline.Pipeline) *ExtractHandler {
	return &ExtractHandler{pipeline: p}
}

// Extract handles POST /extract-invoice
// @Summary Extract structured invoice data from an uploaded document
// @Description Upload an Excel or PDF invoice; returns line items and summary totals as JSON
// @Tags extraction
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Invoice document (PDF, XLSX, or XLS)"
// @Success 200 {object} APIResponse{data=domain.InvoiceRecord} "Extraction succeeded"
// @Failure 400 {object} APIResponse "Missing file or unsupported type"
// @Failure 413 {object} APIResponse "File too large"
// @Failure 422 {object} APIResponse "Empty extraction or validation failure"
// @Failure 502 {object} APIResponse "Upstream failure or malformed model output"
// @Failure 504 {object} APIResponse "Upstream timeout"
// @Router /extract-invoice [post]
func (h *ExtractHandler) Extract(c *gin.Context) {
	file, ok := h.readUpload(c)
	if !ok {
		return
	}

	record, err := h.pipeline.Run(c.Request.Context(), file)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, record)
}

// ExtractXLSX handles POST /extract-invoice/export
// @Summary Extract invoice data and download it as an Excel workbook
// @Tags extraction
// @Accept multipart/form-data
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param file formData file true "Invoice document (PDF, XLSX, or XLS)"
// @Success 200 {file} binary "Workbook with Line Items and Summary sheets"
// @Failure 400 {object} APIResponse "Missing file or unsupported type"
// @Router /extract-invoice/export [post]
func (h *ExtractHandler) ExtractXLSX(c *gin.Context) {
	file, ok := h.readUpload(c)
	if !ok {
		return
	}

	record, err := h.pipeline.Run(c.Request.Context(), file)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename+".extracted.xlsx"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if err := export.WriteXLSX(c.Writer, record); err != nil {
		// Headers are already sent; all we can do is log.
		requestID, _ := c.Get("request_id")
		log.Printf("[%v] export write failed: %v", requestID, err)
	}
}

// readUpload pulls the multipart "file" field into an UploadedFile. On
// failure it writes the error response and returns ok=false.
func (h *ExtractHandler) readUpload(c *gin.Context) (*domain.UploadedFile, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "multipart form field 'file' is required")
		return nil, false
	}

	f, err := header.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "uploaded file could not be read")
		return nil, false
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "uploaded file could not be read")
		return nil, false
	}

	return &domain.UploadedFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}
