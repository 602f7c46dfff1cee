package testutil

import (
	"errors"
	"testing"

	apperrors "moneylens/internal/errors"
)

// appError unwraps err to an *AppError or fails the test.
func appError(t *testing.T, err error) *apperrors.AppError {
	t.Helper()
	if err == nil {
		t.Fatal("expected an AppError, got nil")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	return appErr
}

// AssertAppError checks that err is an *AppError carrying code.
func AssertAppError(t *testing.T, err error, code string) {
	t.Helper()
	if appErr := appError(t, err); appErr.Code != code {
		t.Errorf("expected error code %q, got %q (message: %s)", code, appErr.Code, appErr.Message)
	}
}

// AssertAppErrorIs checks that err was derived from sentinel: same code and
// HTTP status, whatever message it was given.
func AssertAppErrorIs(t *testing.T, err error, sentinel *apperrors.AppError) {
	t.Helper()
	appErr := appError(t, err)
	if appErr.Code != sentinel.Code || appErr.StatusCode != sentinel.StatusCode {
		t.Errorf("expected %s (%d), got %s (%d): %s",
			sentinel.Code, sentinel.StatusCode, appErr.Code, appErr.StatusCode, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
