// =============================================================================
// Spreadsheet to JSON Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic: extracting typed receipt
// and good values from raw rows, checking the cross-field tax invariant, and
// folding the row sequence into receipts grouped by their bill key.
//
// CONVERSION PIPELINE:
//   1. Skip the header row (an empty input is an error)
//   2. For each data row:
//      a. Stop on the early-termination sentinel (empty leading cell)
//      b. Extract the receipt fragment and grouping key
//      c. Install a fresh receipt for a new key; reuse the existing one
//         otherwise
//      d. Extract the good and check its tax consistency
//      e. Append the good and add its sum to the running total
//   3. Wrap the receipts, in first-seen order, with a generation timestamp
//
// Any validation failure is annotated with its 1-based row number (the
// header is row 1) and aborts the run; no partial output is produced.
// Processing is strictly sequential: grouping depends on first-seen order
// and the running totals on row order.
//
// =============================================================================

package converter

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sheet-to-JSON-conversion/internal/config"
	"github.com/ginjaninja78/sheet-to-JSON-conversion/internal/emailcheck"
	"github.com/ginjaninja78/sheet-to-JSON-conversion/internal/fieldcodec"
	"github.com/ginjaninja78/sheet-to-JSON-conversion/internal/types"
)

// =============================================================================
// COLUMN LAYOUT
// =============================================================================

// The input column mapping is positional and fixed (0-indexed). Columns 0-1
// are not read.
const (
	colReceiptKey       = 2
	colOperationType    = 3
	colEmail            = 4
	colPhone            = 5
	colTaxSystem        = 6
	colItemName         = 7
	colPrice            = 8
	colQuantity         = 9
	colSum              = 10
	colTaxRate          = 11
	colTaxAmount        = 12
	colSettlementMethod = 13
	colItemType         = 14

	minRowWidth = 15
)

// timestampLayout renders the generation timestamp: ISO-8601, local capture
// time, microsecond precision.
const timestampLayout = "2006-01-02T15:04:05.000000"

// =============================================================================
// ROW SOURCE
// =============================================================================

// RowSource is the ordered row sequence the converter consumes. The first
// row is treated as a header and skipped. sheetreader.Source satisfies it.
type RowSource interface {
	Next() bool
	Row() types.Row
	Err() error
}

// =============================================================================
// CONVERTER
// =============================================================================

// Converter folds an input row sequence into a receipt document.
type Converter struct {
	codec     *fieldcodec.Codec
	emails    *emailcheck.Checker
	tolerance decimal.Decimal
	log       zerolog.Logger
}

// New creates a Converter from the configuration. The e-mail checker is
// passed in separately so callers control the resolver and its timeout.
func New(cfg *config.Config, emails *emailcheck.Checker, log zerolog.Logger) (*Converter, error) {
	codec, err := fieldcodec.New(cfg.Rules)
	if err != nil {
		return nil, err
	}

	tolerance, err := cfg.ToleranceDecimal()
	if err != nil {
		return nil, err
	}

	return &Converter{
		codec:     codec,
		emails:    emails,
		tolerance: tolerance,
		log:       log,
	}, nil
}

// =============================================================================
// MAIN CONVERSION FUNCTION
// =============================================================================

// Convert consumes the row sequence and returns the output document. The
// first failure aborts the run with the originating row number attached.
func (c *Converter) Convert(ctx context.Context, src RowSource) (*types.Document, error) {
	// The first row is the header.
	if !src.Next() {
		if err := src.Err(); err != nil {
			return nil, err
		}
		return nil, types.NewValidationError("input spreadsheet is empty")
	}

	// The accumulator is owned by this pass alone; receipts live in the map
	// for the whole run and the key order preserves first-seen order.
	receipts := make(map[string]*types.Receipt)
	var order []string

	rowID := 2
	rowsProcessed := 0

	for src.Next() {
		row := src.Row()

		// A row with an absent or empty-text leading cell terminates the
		// run early; whatever accumulated so far is the result.
		if len(row) == 0 || (row[0].Text && row[0].Value == "") {
			c.log.Debug().Int("row", rowID).Msg("empty leading cell, stopping early")
			break
		}

		receipt, key, err := c.extractReceipt(ctx, row)
		if err != nil {
			return nil, atRow(err, rowID)
		}

		// First row bearing a key installs its receipt; later rows reuse
		// the existing one and their freshly extracted header fragment is
		// discarded.
		if existing, seen := receipts[key]; seen {
			receipt = existing
		} else {
			receipts[key] = receipt
			order = append(order, key)
		}

		good, err := c.extractGood(row)
		if err != nil {
			return nil, atRow(err, rowID)
		}
		if err := c.checkGood(good); err != nil {
			return nil, atRow(err, rowID)
		}

		receipt.Goods = append(receipt.Goods, *good)
		receipt.Total = receipt.Total.Add(good.Sum)

		rowID++
		rowsProcessed++
	}

	if err := src.Err(); err != nil {
		return nil, err
	}

	ordered := make([]*types.Receipt, len(order))
	for i, key := range order {
		ordered[i] = receipts[key]
	}

	c.log.Debug().
		Int("rows", rowsProcessed).
		Int("receipts", len(ordered)).
		Msg("conversion complete")

	return &types.Document{
		GeneratedAt: time.Now().Format(timestampLayout),
		Receipts:    ordered,
	}, nil
}

// =============================================================================
// ROW EXTRACTION
// =============================================================================

// extractReceipt assembles the receipt header fragment and the grouping key
// from one row. The buyer-identity column gates the e-mail and phone fields:
// it must be a non-empty text cell.
func (c *Converter) extractReceipt(ctx context.Context, row types.Row) (*types.Receipt, string, error) {
	if len(row) < minRowWidth {
		return nil, "", types.NewValidationError("invalid row width")
	}

	key := row[colReceiptKey].Value

	operationType, err := c.codec.OperationType(row[colOperationType])
	if err != nil {
		return nil, "", err
	}

	identity := row[colEmail]
	if !identity.Text || identity.Value == "" {
		return nil, "", types.NewValidationError("no e-mail given")
	}

	email, err := c.emails.Validate(ctx, identity.Value)
	if err != nil {
		return nil, "", err
	}

	phone := c.codec.Phone(row[colPhone])

	receipt := &types.Receipt{
		ID:            newReceiptID(),
		OperationType: operationType,
		Total:         decimal.Zero,
		TaxSystem:     c.codec.TaxSystem(row[colTaxSystem]),
		Email:         email,
		Phone:         &phone,
		Goods:         make([]types.Good, 0, 1),
	}

	return receipt, key, nil
}

// extractGood assembles a typed good from one row. Per-field failures
// propagate unchanged; the caller attaches the row number.
func (c *Converter) extractGood(row types.Row) (*types.Good, error) {
	good := &types.Good{
		Name:     c.codec.ItemName(row[colItemName]),
		ItemType: c.codec.ItemType(row[colItemType]),
	}

	var err error
	if good.Price, err = c.codec.Price(row[colPrice]); err != nil {
		return nil, err
	}
	if good.Quantity, err = c.codec.Quantity(row[colQuantity]); err != nil {
		return nil, err
	}
	if good.Sum, err = c.codec.Sum(row[colSum]); err != nil {
		return nil, err
	}
	if good.TaxRate, err = c.codec.TaxRate(row[colTaxRate]); err != nil {
		return nil, err
	}
	if good.TaxAmount, err = c.codec.TaxAmount(row[colTaxAmount]); err != nil {
		return nil, err
	}
	if good.SettlementMethod, err = c.codec.SettlementMethod(row[colSettlementMethod]); err != nil {
		return nil, err
	}

	return good, nil
}

// =============================================================================
// CONSISTENCY CHECK
// =============================================================================

// checkGood recomputes price * quantity * rate and compares it with the
// declared tax amount. The absolute difference must stay within the
// configured tolerance. Pure function, no state is touched.
func (c *Converter) checkGood(good *types.Good) error {
	rate, ok := c.codec.RateFor(good.TaxRate)
	if !ok {
		return types.NewValidationError("invalid tax rate value")
	}

	delta := good.Price.Mul(good.Quantity).Mul(rate).Sub(good.TaxAmount)
	if delta.Abs().GreaterThan(c.tolerance) {
		return types.NewValidationError("tax amount contradicts price, quantity and tax rate")
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// newReceiptID generates a fresh receipt identifier: a random UUID rendered
// as 32 uppercase hex characters.
func newReceiptID() string {
	id := uuid.New()
	dst := make([]byte, hex.EncodedLen(len(id)))
	hex.Encode(dst, id[:])

	for i, b := range dst {
		if b >= 'a' && b <= 'f' {
			dst[i] = b - ('a' - 'A')
		}
	}

	return string(dst)
}

// atRow annotates a validation error with its originating row number. The
// annotation happens here, in the aggregation loop, so the inner error kinds
// stay reusable across contexts.
func atRow(err error, row int) error {
	var ve *types.ValidationError
	if errors.As(err, &ve) {
		return ve.AtRow(row)
	}
	return err
}
