// =============================================================================
// Spreadsheet to JSON Converter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - sheetreader
//   - fieldcodec
//   - emailcheck
//   - converter
//   - jsonwriter
//
// =============================================================================

package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUT CELL TYPES
// =============================================================================

// Cell is a single cell of an input row. The raw value is always carried as a
// string; Text records whether the source stored the cell as text. The
// distinction matters for the buyer-identity gate, which only accepts
// non-empty text cells.
type Cell struct {
	// Value is the raw cell content.
	Value string

	// Text is true when the source cell was string-typed. CSV cells are
	// always text; XLSX cells carry the workbook's cell type.
	Text bool
}

// TextCell builds a string-typed cell. Used by the CSV source and by tests.
func TextCell(v string) Cell {
	return Cell{Value: v, Text: true}
}

// NumberCell builds a numeric cell.
func NumberCell(v string) Cell {
	return Cell{Value: v, Text: false}
}

// Row is one ordered row of cells from the input spreadsheet.
type Row []Cell

// =============================================================================
// DOMAIN TYPES
// =============================================================================

// Good is a single priced, taxed line item within a receipt. Field tags match
// the wire format the downstream system consumes.
type Good struct {
	// Name is the item name. Currently passed through unvalidated.
	Name string `json:"n"`

	// Price is the unit price.
	Price decimal.Decimal `json:"p"`

	// Quantity is the purchased quantity.
	Quantity decimal.Decimal `json:"q"`

	// Sum is the declared line sum.
	Sum decimal.Decimal `json:"s"`

	// TaxRate is the VAT bracket tag (e.g. "vat20").
	TaxRate string `json:"ts"`

	// TaxAmount is the declared tax amount. It must agree with
	// Price * Quantity * rate(TaxRate) within the configured tolerance.
	TaxAmount decimal.Decimal `json:"tv"`

	// SettlementMethod is the declared payment form.
	SettlementMethod string `json:"smc"`

	// ItemType is the item-type tag. Currently passed through unvalidated.
	ItemType string `json:"sco"`
}

// Receipt groups one or more goods under one buyer and operation type.
// A receipt is created on the first row bearing a new grouping key and
// mutated by every subsequent row sharing that key.
type Receipt struct {
	// ID is a freshly generated opaque identifier: 32 uppercase hex chars.
	ID string `json:"id"`

	// OperationType is "sale" or "sale_refund".
	OperationType string `json:"dt"`

	// Total is the running total: the sum of the goods' Sum fields,
	// accumulated incrementally in row order.
	Total decimal.Decimal `json:"cr"`

	// TaxSystem is the tax-system tag. Always the configured constant.
	TaxSystem string `json:"ts"`

	// Email is the validated buyer e-mail address.
	Email string `json:"em,omitempty"`

	// Phone is the raw buyer phone number. Present only when the buyer
	// identity came from a string-typed e-mail cell.
	Phone *string `json:"ph,omitempty"`

	// Goods are the receipt's line items in row order.
	Goods []Good `json:"i"`
}

// Document is the output of a conversion run: a generation timestamp and the
// receipts in first-seen order.
type Document struct {
	// GeneratedAt is the local capture time in ISO-8601 format.
	GeneratedAt string `json:"t"`

	// Receipts are the converted receipts in first-seen order.
	Receipts []*Receipt `json:"i"`
}

// =============================================================================
// VALIDATION ERROR
// =============================================================================

// ValidationError is the single error taxonomy for the conversion pipeline.
// Every field-level, e-mail, consistency and structural failure is one of
// these; the first failure aborts the run.
type ValidationError struct {
	// Kind is the human-readable reason, e.g. "invalid price value".
	Kind string

	// Row is the 1-based input row at which the failure occurred, counting
	// the header as row 1. Zero when the error is not tied to a row.
	Row int
}

// NewValidationError creates a ValidationError without row context. The row
// is attached by the aggregation loop, so the same kind is reusable across
// contexts.
func NewValidationError(kind string) *ValidationError {
	return &ValidationError{Kind: kind}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("Row %d, %s", e.Row, e.Kind)
	}
	return e.Kind
}

// AtRow returns a copy of the error annotated with the given row number.
// An already-annotated error is returned unchanged.
func (e *ValidationError) AtRow(row int) *ValidationError {
	if e.Row > 0 {
		return e
	}
	return &ValidationError{Kind: e.Kind, Row: row}
}
