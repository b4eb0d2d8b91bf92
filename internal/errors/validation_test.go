package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	// Test NewValidationError
	err := NewValidationError("titulo", "is required", "")

	if err.Field != "titulo" {
		t.Errorf("Expected field to be 'titulo', got '%s'", err.Field)
	}

	if err.Message != "is required" {
		t.Errorf("Expected message to be 'is required', got '%s'", err.Message)
	}

	// Test Error method
	expected := "validation error on field 'titulo': is required"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	// Test empty ValidationErrors
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	// Test single ValidationError
	errs = append(errs, *NewValidationError("nivel", "must be a CEFR level (A1, A2, B1, B2, C1, C2)", "Z9"))
	expected := "validation failed: nivel must be a CEFR level (A1, A2, B1, B2, C1, C2)"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	// Test multiple ValidationErrors
	errs = append(errs, *NewValidationError("idioma", "is required", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("estado", "must be a valid lesson status (borrador, activa, inactiva)", "lesson_status", "pausada")

	if err.Rule != "lesson_status" {
		t.Errorf("Expected rule to be 'lesson_status', got '%s'", err.Rule)
	}

	if err.Field != "estado" {
		t.Errorf("Expected field to be 'estado', got '%s'", err.Field)
	}
}

func TestFromStrings(t *testing.T) {
	errs := FromStrings([]string{"activity 1: prompt is required", "at least one media file is required"})

	if len(errs) != 2 {
		t.Fatalf("Expected 2 errors, got %d", len(errs))
	}

	msgs := errs.Messages()
	if msgs[0] != "activity 1: prompt is required" {
		t.Errorf("Unexpected first message: '%s'", msgs[0])
	}
	if msgs[1] != "at least one media file is required" {
		t.Errorf("Unexpected second message: '%s'", msgs[1])
	}
}

func TestMessagesIncludeFieldPrefix(t *testing.T) {
	errs := ValidationErrors{
		*NewValidationError("titulo", "is required", nil),
	}

	msgs := errs.Messages()
	if msgs[0] != "titulo is required" {
		t.Errorf("Expected 'titulo is required', got '%s'", msgs[0])
	}
}
