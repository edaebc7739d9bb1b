package domain

import (
	"time"

	"github.com/google/uuid"
)

// UploadedFile holds the raw bytes of an invoice document as received from the
// caller. It lives for the duration of a single request and is never persisted.
type UploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// LineItem is a single extracted invoice line.
type LineItem struct {
	ProductNumber string  `json:"product_number"`
	Description   string  `json:"description"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	UnitPrice     float64 `json:"unit_price"`
	TotalPrice    float64 `json:"total_price"`
	Country       string  `json:"country"`
	Supplier      string  `json:"supplier"`
	PONumber      string  `json:"po_number"`
	Manufacturer  string  `json:"manufacturer"`
	MPN           string  `json:"mpn"`
	SerialNumber  string  `json:"serial_number"`
}

// InvoiceSummary holds invoice-level fields and totals.
type InvoiceSummary struct {
	InvoiceNumber  string  `json:"invoice_number"`
	InvoiceDate    string  `json:"invoice_date"`
	Subtotal       float64 `json:"subtotal"`
	FreightCharges float64 `json:"freight_charges"`
	Total          float64 `json:"total"`
	Currency       string  `json:"currency"`
}

// InvoiceRecord is the validated extraction result returned to the caller.
// Warnings carry arithmetic mismatches that were flagged but not corrected.
type InvoiceRecord struct {
	LineItems []LineItem     `json:"line_items"`
	Summary   InvoiceSummary `json:"invoice_summary"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// ExtractionRecord is an operational audit row for one pipeline run. It holds
// metadata only, never document content or extracted data.
type ExtractionRecord struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	Filename      string           `db:"filename" json:"filename"`
	FileSize      int64            `db:"file_size" json:"file_size"`
	Status        ExtractionStatus `db:"status" json:"status"`
	FailedStage   string           `db:"failed_stage" json:"failed_stage"`
	ErrorCode     string           `db:"error_code" json:"error_code"`
	LineItemCount int              `db:"line_item_count" json:"line_item_count"`
	DurationMS    int64            `db:"duration_ms" json:"duration_ms"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
}
