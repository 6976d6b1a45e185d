package web2pdf

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestEngineExitError(t *testing.T) {
	t.Parallel()

	err := &EngineExitError{Code: 127, Output: "cannot open display"}

	if !errors.Is(err, ErrEngineStartFailed) {
		t.Error("EngineExitError does not unwrap to ErrEngineStartFailed")
	}

	msg := err.Error()
	if !strings.Contains(msg, "127") {
		t.Errorf("Error() = %q, want the exit code", msg)
	}
	if !strings.Contains(msg, "cannot open display") {
		t.Errorf("Error() = %q, want the captured diagnostics", msg)
	}

	wrapped := fmt.Errorf("starting engine: %w", err)
	var exitErr *EngineExitError
	if !errors.As(wrapped, &exitErr) || exitErr.Code != 127 {
		t.Error("EngineExitError not recoverable through errors.As")
	}
}
