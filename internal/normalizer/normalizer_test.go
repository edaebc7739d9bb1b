package normalizer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invox/internal/domain"
)

func validCandidate() json.RawMessage {
	return json.RawMessage(`{
		"line_items": [
			{
				"product_number": "PN-100",
				"description": "Widget",
				"quantity": 2,
				"unit": "Ea",
				"unit_price": 10.50,
				"total_price": 21.00,
				"country": "US",
				"supplier": "Acme",
				"po_number": "PO-9",
				"manufacturer": "Acme Mfg",
				"mpn": "MPN-1",
				"serial_number": null
			}
		],
		"invoice_summary": {
			"invoice_number": "INV-001",
			"invoice_date": "2024-03-15",
			"subtotal": 21.00,
			"freight_charges": 5.00,
			"total": 26.00,
			"currency": "USD"
		}
	}`)
}

func TestNormalizeValidCandidate(t *testing.T) {
	n := New()

	record, err := n.Normalize(validCandidate())
	require.NoError(t, err)

	require.Len(t, record.LineItems, 1)
	item := record.LineItems[0]
	assert.Equal(t, "PN-100", item.ProductNumber)
	assert.Equal(t, "Widget", item.Description)
	assert.Equal(t, 2.0, item.Quantity)
	assert.Equal(t, 10.50, item.UnitPrice)
	assert.Equal(t, 21.00, item.TotalPrice)
	assert.Equal(t, "", item.SerialNumber)

	assert.Equal(t, "INV-001", record.Summary.InvoiceNumber)
	assert.Equal(t, 26.00, record.Summary.Total)
	assert.Empty(t, record.Warnings)
}

func TestNormalizeIsDeterministic(t *testing.T) {
	n := New()

	first, err := n.Normalize(validCandidate())
	require.NoError(t, err)
	second, err := n.Normalize(validCandidate())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNormalizeEmptyLineItemsIsValid(t *testing.T) {
	n := New()

	record, err := n.Normalize(json.RawMessage(`{
		"line_items": [],
		"invoice_summary": {
			"invoice_number": null,
			"invoice_date": null,
			"subtotal": null,
			"freight_charges": null,
			"total": null,
			"currency": null
		}
	}`))
	require.NoError(t, err)

	assert.Empty(t, record.LineItems)
	assert.Equal(t, 0.0, record.Summary.Subtotal)
	assert.Equal(t, 0.0, record.Summary.Total)
	assert.Empty(t, record.Warnings)
}

func TestNormalizeNullNumericsCoerceToZero(t *testing.T) {
	n := New()

	record, err := n.Normalize(json.RawMessage(`{
		"line_items": [
			{"description": "Thing", "quantity": null, "unit_price": null, "total_price": null}
		],
		"invoice_summary": {"subtotal": null, "freight_charges": null, "total": null}
	}`))
	require.NoError(t, err)

	require.Len(t, record.LineItems, 1)
	assert.Equal(t, 0.0, record.LineItems[0].Quantity)
	assert.Equal(t, 0.0, record.LineItems[0].UnitPrice)
	assert.Equal(t, 0.0, record.LineItems[0].TotalPrice)
}

func TestNormalizeAcceptsNumericStrings(t *testing.T) {
	n := New()

	record, err := n.Normalize(json.RawMessage(`{
		"line_items": [
			{"quantity": "3", "unit_price": "1,250.00", "total_price": "3750"}
		],
		"invoice_summary": {"subtotal": "3,750.00", "freight_charges": "0", "total": "3750"}
	}`))
	require.NoError(t, err)

	require.Len(t, record.LineItems, 1)
	assert.Equal(t, 3.0, record.LineItems[0].Quantity)
	assert.Equal(t, 1250.0, record.LineItems[0].UnitPrice)
	assert.Equal(t, 3750.0, record.Summary.Subtotal)
	assert.Empty(t, record.Warnings)
}

func TestNormalizeRejectsNonNumericValues(t *testing.T) {
	n := New()

	_, err := n.Normalize(json.RawMessage(`{
		"line_items": [
			{"quantity": "two", "unit_price": 1, "total_price": 2}
		],
		"invoice_summary": {"subtotal": 0, "freight_charges": 0, "total": 0}
	}`))
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	_, err = n.Normalize(json.RawMessage(`{
		"line_items": [],
		"invoice_summary": {"subtotal": true, "freight_charges": 0, "total": 0}
	}`))
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestNormalizeRejectsWrongShape(t *testing.T) {
	n := New()

	tests := []struct {
		name      string
		candidate string
	}{
		{"not json", `{{`},
		{"missing invoice_summary", `{"line_items": []}`},
		{"missing line_items", `{"invoice_summary": {}}`},
		{"line_items not an array", `{"line_items": {}, "invoice_summary": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(json.RawMessage(tt.candidate))
			assert.ErrorIs(t, err, domain.ErrValidationFailed)
		})
	}
}

func TestNormalizeFillsDefaultUnit(t *testing.T) {
	n := New()

	record, err := n.Normalize(json.RawMessage(`{
		"line_items": [
			{"unit": null, "quantity": 1, "unit_price": 1, "total_price": 1},
			{"unit": "lbs", "quantity": 1, "unit_price": 1, "total_price": 1}
		],
		"invoice_summary": {"subtotal": 2, "freight_charges": 0, "total": 2}
	}`))
	require.NoError(t, err)

	require.Len(t, record.LineItems, 2)
	assert.Equal(t, DefaultUnit, record.LineItems[0].Unit)
	assert.Equal(t, "lbs", record.LineItems[1].Unit)
}

func TestNormalizeWarnsOnLineItemArithmeticMismatch(t *testing.T) {
	n := New()

	record, err := n.Normalize(json.RawMessage(`{
		"line_items": [
			{"quantity": 3, "unit_price": 10, "total_price": 35}
		],
		"invoice_summary": {"subtotal": 35, "freight_charges": 0, "total": 35}
	}`))
	require.NoError(t, err)

	require.Len(t, record.Warnings, 1)
	assert.Contains(t, record.Warnings[0], "line_items[0].total_price")
	// The mismatched value is reported, never corrected.
	assert.Equal(t, 35.0, record.LineItems[0].TotalPrice)
}

func TestNormalizeWarnsOnSummaryArithmeticMismatch(t *testing.T) {
	n := New()

	record, err := n.Normalize(json.RawMessage(`{
		"line_items": [],
		"invoice_summary": {"subtotal": 100, "freight_charges": 10, "total": 120}
	}`))
	require.NoError(t, err)

	require.Len(t, record.Warnings, 1)
	assert.Contains(t, record.Warnings[0], "invoice_summary.total")
	assert.Equal(t, 120.0, record.Summary.Total)
}

func TestNormalizeToleratesRoundingDrift(t *testing.T) {
	n := New()

	record, err := n.Normalize(json.RawMessage(`{
		"line_items": [
			{"quantity": 3, "unit_price": 10.005, "total_price": 30.03}
		],
		"invoice_summary": {"subtotal": 30.02, "freight_charges": 0, "total": 30.03}
	}`))
	require.NoError(t, err)

	assert.Empty(t, record.Warnings)
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    float64
		wantErr bool
	}{
		{"nil", nil, 0, false},
		{"float", 12.5, 12.5, false},
		{"string", "12.5", 12.5, false},
		{"string with commas", "1,234.56", 1234.56, false},
		{"empty string", "", 0, false},
		{"blank string", "   ", 0, false},
		{"word", "twelve", 0, true},
		{"bool", true, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toNumber(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
