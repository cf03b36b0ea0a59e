// =============================================================================
// Spreadsheet to JSON Converter - Field Codec
// =============================================================================
//
// This module converts raw input cells into typed domain values. Each field
// has one operation that either returns the typed value or fails with a
// ValidationError describing the field ("invalid price value", ...).
//
// FIELD CLASSES:
//   - Enumerations : operation type, settlement method, tax-rate tag.
//                    The value must be a member of the configured table.
//   - Decimals     : price, quantity, sum, tax amount. The value must parse
//                    as a decimal number; text and numeric cells both work.
//   - Constants    : tax system. The input is read but ignored; the codec
//                    always returns the configured tag.
//   - Pass-through : item name, item type. No constraint yet.
//
// All constant tables come from the configuration at construction; nothing
// here reads ambient globals.
//
// =============================================================================

package fieldcodec

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sheet-to-JSON-conversion/internal/config"
	"github.com/ginjaninja78/sheet-to-JSON-conversion/internal/types"
)

// =============================================================================
// CODEC
// =============================================================================

// Codec validates and types raw cells against the configured rule tables.
type Codec struct {
	operationTypes    map[string]struct{}
	settlementMethods map[string]struct{}
	taxRates          map[string]decimal.Decimal
	taxSystem         string
}

// New builds a Codec from the rule tables. It fails if a configured tax rate
// does not parse as a decimal number.
func New(rules config.Rules) (*Codec, error) {
	c := &Codec{
		operationTypes:    toSet(rules.OperationTypes),
		settlementMethods: toSet(rules.SettlementMethods),
		taxRates:          make(map[string]decimal.Decimal, len(rules.TaxRates)),
		taxSystem:         rules.TaxSystem,
	}

	for tag, rate := range rules.TaxRates {
		d, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("tax rate %q for tag %q is not a decimal number", rate, tag)
		}
		c.taxRates[tag] = d
	}

	return c, nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// =============================================================================
// ENUMERATION FIELDS
// =============================================================================

// OperationType validates the receipt operation tag ("sale", "sale_refund").
func (c *Codec) OperationType(cell types.Cell) (string, error) {
	return enumField(c.operationTypes, cell, "operation type")
}

// SettlementMethod validates the payment-form tag of a good.
func (c *Codec) SettlementMethod(cell types.Cell) (string, error) {
	return enumField(c.settlementMethods, cell, "settlement method")
}

// TaxRate validates the VAT bracket tag of a good.
func (c *Codec) TaxRate(cell types.Cell) (string, error) {
	if _, ok := c.taxRates[cell.Value]; !ok {
		return "", types.NewValidationError("invalid tax rate value")
	}
	return cell.Value, nil
}

// RateFor returns the numeric rate for a previously validated tax-rate tag.
func (c *Codec) RateFor(tag string) (decimal.Decimal, bool) {
	rate, ok := c.taxRates[tag]
	return rate, ok
}

func enumField(set map[string]struct{}, cell types.Cell, field string) (string, error) {
	if _, ok := set[cell.Value]; !ok {
		return "", types.NewValidationError("invalid " + field + " value")
	}
	return cell.Value, nil
}

// =============================================================================
// DECIMAL FIELDS
// =============================================================================

// Price parses the unit price of a good.
func (c *Codec) Price(cell types.Cell) (decimal.Decimal, error) {
	return decimalField(cell, "price")
}

// Quantity parses the quantity of a good.
func (c *Codec) Quantity(cell types.Cell) (decimal.Decimal, error) {
	return decimalField(cell, "quantity")
}

// Sum parses the declared line sum of a good.
func (c *Codec) Sum(cell types.Cell) (decimal.Decimal, error) {
	return decimalField(cell, "sum")
}

// TaxAmount parses the declared tax amount of a good.
func (c *Codec) TaxAmount(cell types.Cell) (decimal.Decimal, error) {
	return decimalField(cell, "tax amount")
}

func decimalField(cell types.Cell, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(cell.Value))
	if err != nil {
		return decimal.Decimal{}, types.NewValidationError("invalid " + field + " value")
	}
	return d, nil
}

// =============================================================================
// CONSTANT AND PASS-THROUGH FIELDS
// =============================================================================

// TaxSystem returns the configured tax-system tag regardless of input.
// The single-regime limitation is deliberate; do not validate the cell here
// without extending the rule tables to multiple regimes.
func (c *Codec) TaxSystem(types.Cell) string {
	return c.taxSystem
}

// ItemName passes the item name through. Placeholder for a future constraint.
func (c *Codec) ItemName(cell types.Cell) string {
	return cell.Value
}

// ItemType passes the item-type tag through. Placeholder for a future
// constraint.
func (c *Codec) ItemType(cell types.Cell) string {
	return cell.Value
}

// Phone passes the raw phone number through. Validation is deferred.
func (c *Codec) Phone(cell types.Cell) string {
	return cell.Value
}
