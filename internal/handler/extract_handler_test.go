package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invox/internal/config"
	"invox/internal/domain"
	"invox/internal/normalizer"
	"invox/internal/pipeline"
	"invox/mocks"
)

const candidateJSON = `{
	"line_items": [
		{"description": "Widget", "quantity": 2, "unit_price": 10, "total_price": 20}
	],
	"invoice_summary": {"invoice_number": "INV-1", "subtotal": 20, "freight_charges": 0, "total": 20}
}`

func setupExtractRouter(extractor *mocks.MockTextExtractor, structurer *mocks.MockInvoiceStructurer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	p := pipeline.New(
		extractor,
		structurer,
		normalizer.New(),
		&config.UploadConfig{MaxFileSizeMB: 1},
		&config.PipelineConfig{TimeoutSecs: 10},
	)
	h := NewExtractHandler(p)

	r := gin.New()
	r.POST("/extract-invoice", h.Extract)
	r.POST("/extract-invoice/export", h.ExtractXLSX)
	return r
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestExtractSuccess(t *testing.T) {
	extractor := new(mocks.MockTextExtractor)
	structurer := new(mocks.MockInvoiceStructurer)
	extractor.On("Extract", mock.Anything, mock.Anything).Return("raw text", nil)
	structurer.On("Structure", mock.Anything, "raw text").Return(json.RawMessage(candidateJSON), nil)
	r := setupExtractRouter(extractor, structurer)

	body, contentType := multipartUpload(t, "invoice.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/extract-invoice", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var record domain.InvoiceRecord
	require.NoError(t, json.Unmarshal(data, &record))
	require.Len(t, record.LineItems, 1)
	assert.Equal(t, "Widget", record.LineItems[0].Description)
	assert.Equal(t, "INV-1", record.Summary.InvoiceNumber)
}

func TestExtractMissingFile(t *testing.T) {
	r := setupExtractRouter(new(mocks.MockTextExtractor), new(mocks.MockInvoiceStructurer))

	req := httptest.NewRequest(http.MethodPost, "/extract-invoice", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MISSING_FILE", resp.Error.Code)
}

func TestExtractUnsupportedFileType(t *testing.T) {
	extractor := new(mocks.MockTextExtractor)
	r := setupExtractRouter(extractor, new(mocks.MockInvoiceStructurer))

	body, contentType := multipartUpload(t, "invoice.docx", []byte("word doc"))
	req := httptest.NewRequest(http.MethodPost, "/extract-invoice", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", resp.Error.Code)
	extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestExtractUpstreamTimeoutMapsTo504(t *testing.T) {
	extractor := new(mocks.MockTextExtractor)
	extractor.On("Extract", mock.Anything, mock.Anything).Return("", domain.ErrUpstreamTimeout)
	r := setupExtractRouter(extractor, new(mocks.MockInvoiceStructurer))

	body, contentType := multipartUpload(t, "invoice.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/extract-invoice", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UPSTREAM_TIMEOUT", resp.Error.Code)
}

func TestExtractEmptyExtractionMapsTo422(t *testing.T) {
	extractor := new(mocks.MockTextExtractor)
	extractor.On("Extract", mock.Anything, mock.Anything).Return("", domain.ErrEmptyExtraction)
	r := setupExtractRouter(extractor, new(mocks.MockInvoiceStructurer))

	body, contentType := multipartUpload(t, "invoice.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/extract-invoice", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "EMPTY_EXTRACTION", resp.Error.Code)
}

func TestExtractXLSXReturnsWorkbook(t *testing.T) {
	extractor := new(mocks.MockTextExtractor)
	structurer := new(mocks.MockInvoiceStructurer)
	extractor.On("Extract", mock.Anything, mock.Anything).Return("raw text", nil)
	structurer.On("Structure", mock.Anything, "raw text").Return(json.RawMessage(candidateJSON), nil)
	r := setupExtractRouter(extractor, structurer)

	body, contentType := multipartUpload(t, "invoice.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/extract-invoice/export", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "invoice.pdf.extracted.xlsx")
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
}
