package testutil

import (
	"errors"
	"math"
	"testing"

	apperrors "github.com/AlexyDarius/finarius/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertFloat fails the test if got differs from want by more than tol.
func AssertFloat(t *testing.T, got, want, tol float64) {
	t.Helper()

	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("expected %.8f (±%g), got %.8f", want, tol, got)
	}
}
