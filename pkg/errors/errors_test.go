package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidMerge, "cannot merge %s into itself", "H1")

	if err.Code != ErrCodeInvalidMerge {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidMerge)
	}

	if err.Message != "cannot merge H1 into itself" {
		t.Errorf("Message = %v, want %v", err.Message, "cannot merge H1 into itself")
	}

	expected := "INVALID_MERGE: cannot merge H1 into itself"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeInvalidFormat, cause, "decode tree")

	if err.Code != ErrCodeInvalidFormat {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidFormat)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "INVALID_FORMAT: decode tree: unexpected EOF"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "different code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidMerge,
			expected: false,
		},
		{
			name:     "wrapped by fmt",
			err:      fmt.Errorf("import: %w", New(ErrCodeInvalidInput, "dangling parent")),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "outer code wins",
			err:      Wrap(ErrCodeInternal, New(ErrCodeNotFound, "node"), "undo"),
			code:     ErrCodeInternal,
			expected: true,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"structured", New(ErrCodeNothingToUndo, "nothing to undo"), ErrCodeNothingToUndo},
		{"wrapped", fmt.Errorf("ctx: %w", New(ErrCodeInvalidColor, "bad")), ErrCodeInvalidColor},
		{"plain", errors.New("plain"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidMerge, "cannot merge")); got != "cannot merge" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestDegenerateError(t *testing.T) {
	err := &DegenerateError{NodeID: "H7", Iteration: 12}
	if err.Code() != ErrCodeLayoutDegenerate {
		t.Errorf("Code() = %v", err.Code())
	}
	want := "non-finite position for node H7 at iteration 12"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
