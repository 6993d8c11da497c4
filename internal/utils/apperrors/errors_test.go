package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("socket closed")
	err := Wrap(ErrTypeDelivery, "send failed", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause must be reachable via errors.Is")
	}
	if !IsType(err, ErrTypeDelivery) {
		t.Error("expected delivery type")
	}
	if IsType(err, ErrTypeGeneration) {
		t.Error("type check must not match other types")
	}
}

func TestIsTypeThroughWrapping(t *testing.T) {
	inner := New(ErrTypeEmbedding, "no key")
	outer := fmt.Errorf("retrieval: %w", inner)

	if !IsType(outer, ErrTypeEmbedding) {
		t.Error("expected type to survive fmt wrapping")
	}
	if TypeOf(outer) != ErrTypeEmbedding {
		t.Errorf("unexpected type: %s", TypeOf(outer))
	}
}

func TestTypeOfUntypedError(t *testing.T) {
	if TypeOf(errors.New("plain")) != ErrTypeInternal {
		t.Error("untyped errors default to internal")
	}
}

func TestTypeToHTTPStatus(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    int
	}{
		{ErrTypeNotFound, http.StatusNotFound},
		{ErrTypeValidation, http.StatusBadRequest},
		{ErrTypeDelivery, http.StatusBadGateway},
		{ErrTypeGeneration, http.StatusBadGateway},
		{ErrTypeEmbedding, http.StatusBadGateway},
		{ErrTypeContextResolution, http.StatusBadGateway},
		{ErrTypeStore, http.StatusInternalServerError},
		{ErrTypeDatabase, http.StatusInternalServerError},
		{ErrTypeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := TypeToHTTPStatus(tt.errType); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.errType, tt.want, got)
		}
	}
}
