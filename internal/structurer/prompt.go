// Package structurer holds the prompt and output handling shared by LLM
// structuring clients.
package structurer

import "strings"

// SystemPrompt instructs the model on the extraction task and field set.
const SystemPrompt = `You are an invoice data extraction specialist. Extract all line items from the invoice text and return them in valid JSON format.

IMPORTANT: Always include ALL fields in the response. If a field is not found, set it to null.

For each line item, extract:
- product_number: product/part/model number (null if not found)
- description: item description (null if not found)
- quantity: numeric quantity (null if not found)
- unit: unit of measure like Ea, lbs, etc (null if not found)
- unit_price: price per unit as a number (null if not found)
- total_price: total price as a number (null if not found)
- country: country code (null if not found)
- supplier: supplier/vendor name for this line item (null if not found)
- po_number: purchase order number for this line item (null if not found)
- manufacturer: manufacturer name, often labeled as MF (null if not found)
- mpn: manufacturer part number, often labeled as MPN (null if not found)
- serial_number: serial number, often labeled as SN (null if not found)

Also extract invoice-level data (use null if not found):
- invoice_number: invoice number
- invoice_date: invoice date
- subtotal: subtotal amount
- freight_charges: freight/shipping charges
- total: total amount
- currency: currency code

Return ONLY valid JSON with ALL fields present, no markdown or explanations.`

// BuildUserPrompt wraps the extracted invoice text with the target JSON shape.
func BuildUserPrompt(extractedText string) string {
	var b strings.Builder
	b.WriteString("Extract all line items and totals from this invoice:\n\n")
	b.WriteString(extractedText)
	b.WriteString(`

Return as JSON with this EXACT structure. Include ALL fields for every line item. Use null for any field not found:
{
  "line_items": [
    {
      "product_number": "..." or null,
      "description": "..." or null,
      "quantity": 1 or null,
      "unit": "Ea" or null,
      "unit_price": 1.25 or null,
      "total_price": 1.25 or null,
      "country": "US" or null,
      "supplier": "..." or null,
      "po_number": "..." or null,
      "manufacturer": "..." or null,
      "mpn": "..." or null,
      "serial_number": "..." or null
    }
  ],
  "invoice_summary": {
    "invoice_number": "..." or null,
    "invoice_date": "..." or null,
    "subtotal": 21677.74 or null,
    "freight_charges": 0 or null,
    "total": 21677.74 or null,
    "currency": "USD" or null
  }
}

Remember: ALL fields must be present in every object. Use null for missing values.`)
	return b.String()
}

// StripCodeFences removes a surrounding markdown code fence from model output.
// Models occasionally wrap JSON in fences despite being told not to.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
