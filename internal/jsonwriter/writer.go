// =============================================================================
// Spreadsheet to JSON Converter - JSON Writer Module
// =============================================================================
//
// This module serializes the output document for the downstream consumer.
// The wire format is a single JSON object:
//
//   {
//     "t": "2024-01-15T10:30:00.000000",     <- generation timestamp
//     "i": [                                 <- receipts, first-seen order
//       {
//         "id": "4F2A...", "dt": "sale", "cr": 120.0, "ts": "OSN",
//         "em": "buyer@example.com", "ph": "+1555...",
//         "i": [
//           {"n": "Widget", "p": 100, "q": 1, "s": 120, "ts": "vat20",
//            "tv": 20, "smc": "full_payment", "sco": "commodity"}
//         ]
//       }
//     ]
//   }
//
// Monetary fields serialize as bare JSON numbers. Serialization is lossless:
// decoding the output reproduces the validated field values and the item
// ordering.
//
// =============================================================================

package jsonwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sheet-to-JSON-conversion/internal/types"
)

func init() {
	// The downstream system consumes monetary fields as numbers, not as
	// quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options control document serialization.
type Options struct {
	// Indent is the number of spaces per indent level.
	// Default: 2
	Indent int
}

// DefaultOptions returns the default serialization options.
func DefaultOptions() Options {
	return Options{Indent: 2}
}

// =============================================================================
// ENCODING FUNCTIONS
// =============================================================================

// Encode serializes the document with the default options.
func Encode(doc *types.Document) ([]byte, error) {
	return EncodeWithOptions(doc, DefaultOptions())
}

// EncodeWithOptions serializes the document with custom options.
func EncodeWithOptions(doc *types.Document, options Options) ([]byte, error) {
	indent := options.Indent
	if indent <= 0 {
		indent = DefaultOptions().Indent
	}

	data, err := json.MarshalIndent(doc, "", strings.Repeat(" ", indent))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	return append(data, '\n'), nil
}

// Write serializes the document and writes it to w. Nothing is written when
// encoding fails.
func Write(w io.Writer, doc *types.Document, options Options) error {
	data, err := EncodeWithOptions(doc, options)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return nil
}
