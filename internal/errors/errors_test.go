package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "pairs[%d]: missing %s", 3, "from")

	assert.Equal(t, ErrCodeInvalidInput, err.Code)
	assert.Equal(t, "pairs[3]: missing from", err.Message)
	assert.Equal(t, "INVALID_INPUT: pairs[3]: missing from", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeDatabase, cause, "load edges for %s", "dag-1")

	assert.Equal(t, "DATABASE_ERROR: load edges for dag-1: connection refused", err.Error())
	assert.Same(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeNotFound, "x"), ErrCodeNotFound, true},
		{"other code", New(ErrCodeNotFound, "x"), ErrCodeInternal, false},
		{"outer code wins", Wrap(ErrCodeDatabase, New(ErrCodeNotFound, "inner"), "outer"), ErrCodeDatabase, true},
		{"fmt wrapped", fmt.Errorf("ctx: %w", New(ErrCodeInvalidConfig, "bad")), ErrCodeInvalidConfig, true},
		{"plain error", errors.New("plain"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Is(tt.err, tt.code))
		})
	}
}

func TestGetCodeAndUserMessage(t *testing.T) {
	err := fmt.Errorf("serve: %w", New(ErrCodePayloadTooLarge, "request body over %d bytes", 10))

	assert.Equal(t, ErrCodePayloadTooLarge, GetCode(err))
	assert.Equal(t, "request body over 10 bytes", UserMessage(err))

	plain := errors.New("boom")
	assert.Equal(t, Code(""), GetCode(plain))
	assert.Equal(t, "boom", UserMessage(plain))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{New(ErrCodeNotFound, "x"), http.StatusNotFound},
		{New(ErrCodePayloadTooLarge, "x"), http.StatusRequestEntityTooLarge},
		{New(ErrCodeUnavailable, "x"), http.StatusServiceUnavailable},
		{New(ErrCodeDatabase, "x"), http.StatusBadGateway},
		{New(ErrCodeInvalidConfig, "x"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			require.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
