package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"invox/internal/domain"
)

func TestWriteXLSX(t *testing.T) {
	record := &domain.InvoiceRecord{
		LineItems: []domain.LineItem{
			{
				ProductNumber: "PN-100",
				Description:   "Widget",
				Quantity:      2,
				Unit:          "Ea",
				UnitPrice:     10.5,
				TotalPrice:    21,
				Country:       "US",
			},
		},
		Summary: domain.InvoiceSummary{
			InvoiceNumber:  "INV-001",
			InvoiceDate:    "2024-03-15",
			Subtotal:       21,
			FreightCharges: 5,
			Total:          26,
			Currency:       "USD",
		},
		Warnings: []string{"invoice_summary.total 26.00 differs from subtotal+freight_charges 27.00"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, record))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.ElementsMatch(t, []string{"Line Items", "Summary"}, f.GetSheetList())

	header, err := f.GetCellValue("Line Items", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Product Number", header)

	desc, err := f.GetCellValue("Line Items", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Widget", desc)

	invoiceNo, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "INV-001", invoiceNo)

	warning, err := f.GetCellValue("Summary", "B8")
	require.NoError(t, err)
	assert.Contains(t, warning, "differs from")
}

func TestWriteXLSXEmptyRecord(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, &domain.InvoiceRecord{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Line Items")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
