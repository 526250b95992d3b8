package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "booking not found",
			},
			expected: "NOT_FOUND: booking not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	unwrapped := errors.Unwrap(appErr)
	if unwrapped != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestInsufficientCredits(t *testing.T) {
	err := InsufficientCredits(3, 4)

	if err.Code != CodeInsufficientCredits {
		t.Errorf("expected code %s, got %s", CodeInsufficientCredits, err.Code)
	}
	if err.HTTPStatus != http.StatusPaymentRequired {
		t.Errorf("expected status %d, got %d", http.StatusPaymentRequired, err.HTTPStatus)
	}
	if err.Details["available"] != 3 {
		t.Errorf("expected available 3, got %v", err.Details["available"])
	}
	if err.Details["required"] != 4 {
		t.Errorf("expected required 4, got %v", err.Details["required"])
	}
}

func TestCapacityExceeded(t *testing.T) {
	err := CapacityExceeded("flex desk is full", 1, 5, 5)

	if err.Code != CodeCapacityExceeded {
		t.Errorf("expected code %s, got %s", CodeCapacityExceeded, err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, err.HTTPStatus)
	}
	if err.Details["occupied"] != 5 {
		t.Errorf("expected occupied 5, got %v", err.Details["occupied"])
	}
}

func TestAlreadyCancelled(t *testing.T) {
	err := AlreadyCancelled("abc123")

	if err.Code != CodeAlreadyCancelled {
		t.Errorf("expected code %s, got %s", CodeAlreadyCancelled, err.Code)
	}
	if err.Details["id"] != "abc123" {
		t.Errorf("expected id 'abc123', got %v", err.Details["id"])
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("slot already booked")
	if AsAppError(appErr) != appErr {
		t.Errorf("AsAppError should return the same AppError")
	}

	plain := errors.New("boom")
	converted := AsAppError(plain)
	if converted.Code != CodeInternal {
		t.Errorf("expected plain errors to convert to %s, got %s", CodeInternal, converted.Code)
	}
	if converted.Err != plain {
		t.Errorf("expected converted error to wrap the original")
	}
}
