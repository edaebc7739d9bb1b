package normalizer

// buildInvoiceSchema returns a JSON-Schema (draft 2020-12 subset) as a generic
// map. It gates the structural shape of the candidate payload only: field
// coercion is deliberately left to the normalizer because the model may send
// numbers as strings or nulls.
func buildInvoiceSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"line_items", "invoice_summary"},
		"properties": map[string]any{
			"line_items": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "object"},
			},
			"invoice_summary": map[string]any{
				"type": "object",
			},
		},
	}
}
