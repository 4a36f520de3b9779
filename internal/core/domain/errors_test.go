package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrInvalidQuest", ErrInvalidQuest},
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrMalformedResponse", ErrMalformedResponse},
		{"ErrBreakdownUnsupported", ErrBreakdownUnsupported},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrInvalidInput))
}

func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("evaluate questions: %w", ErrMalformedResponse)

	assert.True(t, errors.Is(wrapped, ErrMalformedResponse))
	assert.False(t, errors.Is(wrapped, ErrLLMUnavailable))
	assert.Contains(t, wrapped.Error(), "malformed capability response")
}

func TestErrors_Uniqueness(t *testing.T) {
	all := []error{
		ErrNotFound, ErrInvalidInput, ErrInvalidQuest, ErrNotImplemented,
		ErrLLMUnavailable, ErrMalformedResponse, ErrBreakdownUnsupported,
		ErrRateLimited,
	}

	for i, a := range all {
		for j, b := range all {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}
