package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		remote   int
		expected int
	}{
		{"nil", nil, http.StatusBadGateway, http.StatusOK},
		{"validation", fmt.Errorf("%w: speed must be positive", ErrValidation), http.StatusBadGateway, http.StatusBadRequest},
		{"remote fetch uses caller status", fmt.Errorf("%w: %w", ErrRemoteFetch, context.DeadlineExceeded), http.StatusBadGateway, http.StatusBadGateway},
		{"remote fetch as bad request", fmt.Errorf("%w: http 403", ErrRemoteFetch), http.StatusBadRequest, http.StatusBadRequest},
		{"missing local file wins over source unavailable", fmt.Errorf("%w: %w", ErrSourceUnavailable, ErrNotFound), http.StatusBadGateway, http.StatusNotFound},
		{"source unavailable", ErrSourceUnavailable, http.StatusBadGateway, http.StatusBadRequest},
		{"decode", ErrMediaDecode, http.StatusBadGateway, http.StatusInternalServerError},
		{"encode", ErrEncode, http.StatusBadGateway, http.StatusInternalServerError},
		{"upstream", ErrUpstream, http.StatusBadGateway, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusBadGateway, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err, tt.remote); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWrappedCauseIsPreserved(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrRemoteFetch, context.DeadlineExceeded)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("Expected deadline cause to survive wrapping")
	}
}
