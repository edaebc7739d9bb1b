// Package export renders an InvoiceRecord as an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"invox/internal/domain"
)

// lineItemColumns defines the Line Items sheet header row.
var lineItemColumns = []string{
	"Product Number",
	"Description",
	"Quantity",
	"Unit",
	"Unit Price",
	"Total Price",
	"Country",
	"Supplier",
	"PO Number",
	"Manufacturer",
	"MPN",
	"Serial Number",
}

const (
	itemsSheet   = "Line Items"
	summarySheet = "Summary"
)

// WriteXLSX writes record as a two-sheet workbook to w.
func WriteXLSX(w io.Writer, record *domain.InvoiceRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", itemsSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]interface{}, len(lineItemColumns))
	for i, c := range lineItemColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(itemsSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}

	for i, item := range record.LineItems {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{
			item.ProductNumber,
			item.Description,
			item.Quantity,
			item.Unit,
			item.UnitPrice,
			item.TotalPrice,
			item.Country,
			item.Supplier,
			item.PONumber,
			item.Manufacturer,
			item.MPN,
			item.SerialNumber,
		}
		if err := f.SetSheetRow(itemsSheet, cell, &row); err != nil {
			return fmt.Errorf("writing line item %d: %w", i, err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	summaryRows := [][]interface{}{
		{"Invoice Number", record.Summary.InvoiceNumber},
		{"Invoice Date", record.Summary.InvoiceDate},
		{"Subtotal", record.Summary.Subtotal},
		{"Freight Charges", record.Summary.FreightCharges},
		{"Total", record.Summary.Total},
		{"Currency", record.Summary.Currency},
	}
	for i, row := range summaryRows {
		r := row
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summarySheet, cell, &r); err != nil {
			return fmt.Errorf("writing summary row %d: %w", i, err)
		}
	}
	for i, warning := range record.Warnings {
		row := []interface{}{"Warning", warning}
		cell := fmt.Sprintf("A%d", len(summaryRows)+2+i)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("writing warning row %d: %w", i, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
