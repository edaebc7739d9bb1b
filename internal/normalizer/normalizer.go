// Package normalizer validates and coerces the candidate payload returned by
// the structuring model into a domain.InvoiceRecord. Normalization is a pure
// function of its input: the same candidate always yields the same record.
package normalizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"invox/internal/domain"
)

// Tolerance is the absolute tolerance used when cross-checking totals.
// LLM arithmetic carries rounding artifacts of up to a cent per operand,
// so two cents covers a multiply-then-round discrepancy.
const Tolerance = 0.02

// DefaultUnit is filled in when a line item carries no unit of measure.
const DefaultUnit = "Ea"

// Normalizer validates candidate payloads against the invoice schema and
// coerces them into InvoiceRecords.
type Normalizer struct {
	schema *jsonschema.Schema
}

// New compiles the invoice schema. Compilation failure is a programming
// error, so it panics rather than returning an error.
func New() *Normalizer {
	b, err := json.Marshal(buildInvoiceSchema())
	if err != nil {
		panic(fmt.Sprintf("normalizer: marshal schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("invoice.schema.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("normalizer: add schema: %v", err))
	}
	schema, err := compiler.Compile("invoice.schema.json")
	if err != nil {
		panic(fmt.Sprintf("normalizer: compile schema: %v", err))
	}
	return &Normalizer{schema: schema}
}

// rawLineItem mirrors the model's line item shape with untyped values so
// numeric fields can arrive as numbers, numeric strings, or null.
type rawLineItem struct {
	ProductNumber any `json:"product_number"`
	Description   any `json:"description"`
	Quantity      any `json:"quantity"`
	Unit          any `json:"unit"`
	UnitPrice     any `json:"unit_price"`
	TotalPrice    any `json:"total_price"`
	Country       any `json:"country"`
	Supplier      any `json:"supplier"`
	PONumber      any `json:"po_number"`
	Manufacturer  any `json:"manufacturer"`
	MPN           any `json:"mpn"`
	SerialNumber  any `json:"serial_number"`
}

type rawSummary struct {
	InvoiceNumber  any `json:"invoice_number"`
	InvoiceDate    any `json:"invoice_date"`
	Subtotal       any `json:"subtotal"`
	FreightCharges any `json:"freight_charges"`
	Total          any `json:"total"`
	Currency       any `json:"currency"`
}

type rawCandidate struct {
	LineItems []rawLineItem `json:"line_items"`
	Summary   rawSummary    `json:"invoice_summary"`
}

// Normalize validates candidate and returns the coerced InvoiceRecord.
// Arithmetic mismatches beyond Tolerance are attached as warnings, never
// corrected. An empty line_items array is valid.
func (n *Normalizer) Normalize(candidate json.RawMessage) (*domain.InvoiceRecord, error) {
	var generic any
	if err := json.Unmarshal(candidate, &generic); err != nil {
		return nil, fmt.Errorf("candidate payload is not valid JSON: %w", domain.ErrValidationFailed)
	}
	if err := n.schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("candidate payload does not match invoice schema: %v: %w", err, domain.ErrValidationFailed)
	}

	var raw rawCandidate
	if err := json.Unmarshal(candidate, &raw); err != nil {
		return nil, fmt.Errorf("decoding candidate payload: %v: %w", err, domain.ErrValidationFailed)
	}

	record := &domain.InvoiceRecord{
		LineItems: make([]domain.LineItem, 0, len(raw.LineItems)),
	}

	for i, ri := range raw.LineItems {
		item := domain.LineItem{
			ProductNumber: toString(ri.ProductNumber),
			Description:   toString(ri.Description),
			Unit:          toString(ri.Unit),
			Country:       toString(ri.Country),
			Supplier:      toString(ri.Supplier),
			PONumber:      toString(ri.PONumber),
			Manufacturer:  toString(ri.Manufacturer),
			MPN:           toString(ri.MPN),
			SerialNumber:  toString(ri.SerialNumber),
		}
		var err error
		if item.Quantity, err = toNumber(ri.Quantity); err != nil {
			return nil, numericFieldError(i, "quantity", ri.Quantity)
		}
		if item.UnitPrice, err = toNumber(ri.UnitPrice); err != nil {
			return nil, numericFieldError(i, "unit_price", ri.UnitPrice)
		}
		if item.TotalPrice, err = toNumber(ri.TotalPrice); err != nil {
			return nil, numericFieldError(i, "total_price", ri.TotalPrice)
		}
		if item.Unit == "" {
			item.Unit = DefaultUnit
		}

		expected := item.Quantity * item.UnitPrice
		if !approxEqual(item.TotalPrice, expected) {
			record.Warnings = append(record.Warnings, fmt.Sprintf(
				"line_items[%d].total_price %.2f differs from quantity*unit_price %.2f", i, item.TotalPrice, expected))
		}
		record.LineItems = append(record.LineItems, item)
	}

	summary := domain.InvoiceSummary{
		InvoiceNumber: toString(raw.Summary.InvoiceNumber),
		InvoiceDate:   toString(raw.Summary.InvoiceDate),
		Currency:      toString(raw.Summary.Currency),
	}
	var err error
	if summary.Subtotal, err = toNumber(raw.Summary.Subtotal); err != nil {
		return nil, fmt.Errorf("invoice_summary.subtotal is not numeric: %w", domain.ErrValidationFailed)
	}
	if summary.FreightCharges, err = toNumber(raw.Summary.FreightCharges); err != nil {
		return nil, fmt.Errorf("invoice_summary.freight_charges is not numeric: %w", domain.ErrValidationFailed)
	}
	if summary.Total, err = toNumber(raw.Summary.Total); err != nil {
		return nil, fmt.Errorf("invoice_summary.total is not numeric: %w", domain.ErrValidationFailed)
	}

	if expected := summary.Subtotal + summary.FreightCharges; !approxEqual(summary.Total, expected) {
		record.Warnings = append(record.Warnings, fmt.Sprintf(
			"invoice_summary.total %.2f differs from subtotal+freight_charges %.2f", summary.Total, expected))
	}
	record.Summary = summary

	return record, nil
}

func numericFieldError(idx int, field string, v any) error {
	return fmt.Errorf("line_items[%d].%s is not numeric (got %T): %w", idx, field, v, domain.ErrValidationFailed)
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= Tolerance
}

// toNumber coerces a model-supplied value to float64. Null and absent values
// coerce to zero; numeric strings are accepted; anything else is an error.
func toNumber(v any) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return t, nil
	case json.Number:
		return t.Float64()
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not numeric: %q", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not numeric: %T", v)
	}
}

// toString coerces a model-supplied value to a trimmed string; null and
// non-string values become empty.
func toString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
