package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Message(t *testing.T) {
	err := NewValidationError("invalid price value")
	if err.Error() != "invalid price value" {
		t.Errorf("Unexpected message without row: %q", err.Error())
	}

	annotated := err.AtRow(7)
	if annotated.Error() != "Row 7, invalid price value" {
		t.Errorf("Unexpected annotated message: %q", annotated.Error())
	}

	// The original stays row-free so the kind is reusable.
	if err.Row != 0 {
		t.Errorf("Expected original untouched, got row %d", err.Row)
	}
}

func TestValidationError_AtRowIdempotent(t *testing.T) {
	err := NewValidationError("invalid sum value").AtRow(3)
	if again := err.AtRow(9); again.Row != 3 {
		t.Errorf("Expected first annotation to stick, got row %d", again.Row)
	}
}

func TestValidationError_ErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("conversion failed: %w", NewValidationError("invalid row width").AtRow(2))

	var ve *ValidationError
	if !errors.As(wrapped, &ve) {
		t.Fatal("Expected errors.As to recover the ValidationError")
	}
	if ve.Kind != "invalid row width" || ve.Row != 2 {
		t.Errorf("Unexpected recovered error: %+v", ve)
	}
}

func TestCellConstructors(t *testing.T) {
	if c := TextCell("abc"); !c.Text || c.Value != "abc" {
		t.Errorf("Unexpected text cell: %+v", c)
	}
	if c := NumberCell("1.5"); c.Text || c.Value != "1.5" {
		t.Errorf("Unexpected numeric cell: %+v", c)
	}
}
