package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// MockInvoiceStructurer is a mock implementation of port.InvoiceStructurer.
type MockInvoiceStructurer struct {
	mock.Mock
}

func (m *MockInvoiceStructurer) Structure(ctx context.Context, rawText string) (json.RawMessage, error) {
	args := m.Called(ctx, rawText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockInvoiceStructurer) Ping(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
