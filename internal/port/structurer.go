package port

import (
	"context"
	"encoding/json"
)

// InvoiceStructurer abstracts the language-model service that converts raw
// invoice text into a candidate JSON payload. The payload is returned as-is
// and must be validated by the normalizer before use.
type InvoiceStructurer interface {
	Structure(ctx context.Context, rawText string) (json.RawMessage, error)

	// Ping confirms connectivity and credentials with a trivial prompt.
	Ping(ctx context.Context) (string, error)
}
