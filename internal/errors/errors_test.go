package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrResolve,
		ErrTransport,
		ErrTerminal,
		ErrPipeline,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in .pingspark.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "terminal error",
			code:       ErrTerminal,
			message:    "Cannot read terminal size",
			suggestion: "Run pingspark in an interactive terminal",
		},
		{
			name:    "no suggestion",
			code:    ErrResolve,
			message: "Cannot resolve host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)
			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)

			out := err.Error()
			assert.True(t, strings.HasPrefix(out, "✗ "+tt.message))
			if tt.suggestion != "" {
				assert.Contains(t, out, tt.suggestion)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, "Pipeline stopped")

	assert.Equal(t, ErrPipeline, err.Code)
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("operation not permitted")
	err := WrapWithCode(cause, ErrTransport, "Cannot open ICMP socket", "Run with privileges")

	assert.Equal(t, ErrTransport, err.Code)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "Run with privileges")
}

func TestIsCode(t *testing.T) {
	base := New(ErrTerminal, "no tty", "")
	wrapped := fmt.Errorf("watcher: %w", base)

	assert.True(t, IsCode(base, ErrTerminal))
	assert.True(t, IsCode(wrapped, ErrTerminal))
	assert.False(t, IsCode(wrapped, ErrConfig))
	assert.False(t, IsCode(nil, ErrTerminal))
	assert.False(t, IsCode(errors.New("plain"), ErrTerminal))
}
