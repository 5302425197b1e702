package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", Validation("Title must be at least 2 characters"), http.StatusBadRequest, "Title must be at least 2 characters"},
		{"not found", NotFound("Todo not found", nil), http.StatusBadRequest, "Todo not found"},
		{"route", RouteNotFound("/unknown/path"), http.StatusNotFound, "Route /unknown/path not found"},
		{"plain error", errors.New("connection refused"), http.StatusInternalServerError, InternalMessage},
		{"explicit internal", &Error{Kind: KindInternal, Message: "secret detail"}, http.StatusInternalServerError, InternalMessage},
		{"wrapped validation", fmt.Errorf("decode: %w", Validation("bad body")), http.StatusBadRequest, "bad body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := Status(tt.err)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if msg != tt.message {
				t.Errorf("message = %q, want %q", msg, tt.message)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(errors.New("x")); got != KindInternal {
		t.Errorf("KindOf(plain) = %v", got)
	}
	cause := errors.New("no documents")
	err := fmt.Errorf("get: %w", NotFound("Todo not found", cause))
	if got := KindOf(err); got != KindNotFound {
		t.Errorf("KindOf(not found) = %v", got)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}
