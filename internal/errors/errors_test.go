package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrInternalServer, cause)

	if err.Code != "INTERNAL_ERROR" || err.StatusCode != http.StatusInternalServerError {
		t.Errorf("unexpected wrapped error %+v", err)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable through errors.Is")
	}
	if err.Error() != ErrInternalServer.Message {
		t.Errorf("message must not leak the cause, got %q", err.Error())
	}
}

func TestWithMessage(t *testing.T) {
	err := WithMessage(ErrInvalidInput, "amount is required")
	if err.Code != "INVALID_INPUT" || err.Message != "amount is required" {
		t.Errorf("unexpected error %+v", err)
	}
	if ErrInvalidInput.Message != "Invalid input" {
		t.Error("sentinel must not be mutated")
	}

	var appErr *AppError
	if !stderrors.As(fmt.Errorf("ctx: %w", err), &appErr) || appErr.Code != "INVALID_INPUT" {
		t.Error("expected errors.As to find the AppError")
	}
}
