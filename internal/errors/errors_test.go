package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Is(t *testing.T) {
	cause := errors.New("connection reset")

	wrapped := Wrap(ErrRunFailed, cause)
	if !errors.Is(wrapped, ErrRunFailed) {
		t.Error("expected wrapped error to match its sentinel")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected wrapped error to expose its cause")
	}
	if errors.Is(wrapped, ErrRunInProgress) {
		t.Error("expected different codes not to match")
	}

	custom := WithMessage(ErrInvalidInput, "Invalid id")
	if !errors.Is(fmt.Errorf("handler: %w", custom), ErrInvalidInput) {
		t.Error("expected custom message error to match its sentinel")
	}
	if custom.StatusCode != ErrInvalidInput.StatusCode || custom.Error() != "Invalid id" {
		t.Errorf("unexpected error %+v", custom)
	}
}
