package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeOf(t *testing.T) {
	if got := CodeOf(NewTerminalRequest("req-1")); got != CodeTerminalRequest {
		t.Fatalf("CodeOf = %q", got)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Fatalf("foreign error must yield empty code, got %q", got)
	}
	if got := CodeOf(nil); got != "" {
		t.Fatalf("nil error must yield empty code, got %q", got)
	}
}

func TestCodeSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("claim failed: %w", NewAlreadyOwnedBySelf("req-1"))
	if !HasCode(err, CodeAlreadyOwned) {
		t.Fatalf("wrapped error lost its code")
	}
}

func TestStorageFailureCarriesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStorageFailure(cause)

	if !HasCode(err, CodeStorageFailure) {
		t.Fatalf("code = %q", CodeOf(err))
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause must be reachable through Unwrap")
	}
	if ToDomainError(err).HTTPStatus != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", ToDomainError(err).HTTPStatus)
	}
}

func TestToDomainErrorCoercesForeignErrors(t *testing.T) {
	converted := ToDomainError(errors.New("boom"))
	if converted.Code != CodeInternalError {
		t.Fatalf("code = %q", converted.Code)
	}
	if converted.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("status = %d", converted.HTTPStatus)
	}
	if ToDomainError(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}
