package jsonwriter

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sheet-to-JSON-conversion/internal/types"
)

func sampleDocument() *types.Document {
	phone := "+15551234567"
	return &types.Document{
		GeneratedAt: "2024-01-15T10:30:00.000000",
		Receipts: []*types.Receipt{
			{
				ID:            "0123456789ABCDEF0123456789ABCDEF",
				OperationType: "sale",
				Total:         decimal.RequireFromString("120"),
				TaxSystem:     "OSN",
				Email:         "b@example.com",
				Phone:         &phone,
				Goods: []types.Good{
					{
						Name:             "Widget",
						Price:            decimal.RequireFromString("100"),
						Quantity:         decimal.RequireFromString("1"),
						Sum:              decimal.RequireFromString("120"),
						TaxRate:          "vat20",
						TaxAmount:        decimal.RequireFromString("20"),
						SettlementMethod: "full_payment",
						ItemType:         "commodity",
					},
				},
			},
		},
	}
}

func TestEncode_WireKeys(t *testing.T) {
	data, err := Encode(sampleDocument())
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if doc["t"] != "2024-01-15T10:30:00.000000" {
		t.Errorf("Unexpected timestamp field: %v", doc["t"])
	}

	receipts, ok := doc["i"].([]interface{})
	if !ok || len(receipts) != 1 {
		t.Fatalf("Expected one receipt under key \"i\", got: %v", doc["i"])
	}

	receipt := receipts[0].(map[string]interface{})
	for _, key := range []string{"id", "dt", "cr", "ts", "em", "ph", "i"} {
		if _, ok := receipt[key]; !ok {
			t.Errorf("Receipt is missing key %q", key)
		}
	}

	goods := receipt["i"].([]interface{})
	good := goods[0].(map[string]interface{})
	for _, key := range []string{"n", "p", "q", "s", "ts", "tv", "smc", "sco"} {
		if _, ok := good[key]; !ok {
			t.Errorf("Good is missing key %q", key)
		}
	}
}

func TestEncode_BareNumbers(t *testing.T) {
	data, err := Encode(sampleDocument())
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	output := string(data)
	if strings.Contains(output, `"120"`) || strings.Contains(output, `"20"`) {
		t.Errorf("Expected monetary fields as bare numbers, got:\n%s", output)
	}
	if !strings.Contains(output, `"cr": 120`) {
		t.Errorf("Expected total as a bare number, got:\n%s", output)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	original := sampleDocument()

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	var decoded types.Document
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	if decoded.GeneratedAt != original.GeneratedAt {
		t.Errorf("Timestamp changed: %q", decoded.GeneratedAt)
	}
	if len(decoded.Receipts) != 1 {
		t.Fatalf("Expected 1 receipt, got %d", len(decoded.Receipts))
	}

	want, got := original.Receipts[0], decoded.Receipts[0]
	if got.ID != want.ID || got.OperationType != want.OperationType ||
		got.TaxSystem != want.TaxSystem || got.Email != want.Email {
		t.Errorf("Receipt fields changed: %+v", got)
	}
	if !got.Total.Equal(want.Total) {
		t.Errorf("Total changed: %s", got.Total)
	}
	if got.Phone == nil || *got.Phone != *want.Phone {
		t.Errorf("Phone changed: %v", got.Phone)
	}

	if len(got.Goods) != 1 {
		t.Fatalf("Expected 1 good, got %d", len(got.Goods))
	}
	wg, gg := want.Goods[0], got.Goods[0]
	if gg.Name != wg.Name || gg.TaxRate != wg.TaxRate ||
		gg.SettlementMethod != wg.SettlementMethod || gg.ItemType != wg.ItemType {
		t.Errorf("Good fields changed: %+v", gg)
	}
	for _, pair := range []struct{ want, got decimal.Decimal }{
		{wg.Price, gg.Price}, {wg.Quantity, gg.Quantity},
		{wg.Sum, gg.Sum}, {wg.TaxAmount, gg.TaxAmount},
	} {
		if !pair.got.Equal(pair.want) {
			t.Errorf("Decimal field changed: want %s, got %s", pair.want, pair.got)
		}
	}
}

func TestEncode_OmitsEmptyContact(t *testing.T) {
	doc := sampleDocument()
	doc.Receipts[0].Email = ""
	doc.Receipts[0].Phone = nil

	data, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	output := string(data)
	if strings.Contains(output, `"em"`) {
		t.Error("Expected empty e-mail to be omitted")
	}
	if strings.Contains(output, `"ph"`) {
		t.Error("Expected absent phone to be omitted")
	}
}

func TestEncodeWithOptions_Indent(t *testing.T) {
	data, err := EncodeWithOptions(sampleDocument(), Options{Indent: 4})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	if !strings.Contains(string(data), "\n    \"t\"") {
		t.Errorf("Expected 4-space indent, got:\n%s", string(data))
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("Expected trailing newline")
	}
}

// failWriter fails every write.
type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWrite_PropagatesWriteError(t *testing.T) {
	if err := Write(failWriter{}, sampleDocument(), DefaultOptions()); err == nil {
		t.Error("Expected write error, got nil")
	}
}
