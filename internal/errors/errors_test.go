package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{"file not found", NewFileNotFound("/idl/a.thrift"), "no such file: /idl/a.thrift"},
		{"entry not in map", NewFileNotFoundInMap("a.thrift"), `file "a.thrift" does not exist in fileContentMap`},
		{"include not in map", NewIncludeNotFoundInMap("dep/base.thrift"), "file dep/base.thrift does not exist in fileContentMap"},
		{"syntax", NewSyntaxError("unexpected token \"}\"", "/idl/a.thrift", 3, 7, nil), "unexpected token \"}\"(/idl/a.thrift:3:7)"},
		{"missing namespace", NewMissingNamespace("a.thrift"), "a js namespace should be specifed"},
		{"path param", NewInvalidPathParam("k1", "Foo"), "the type of path parameter 'k1' in 'Foo' should be string or integer"},
		{"invalid input", NewInvalidInput("a.txt"), `invalid filePath: "a.txt"`},
		{"import cycle", NewImportCycle([]string{"a.thrift", "b.thrift", "a.thrift"}), "import cycle detected: a.thrift -> b.thrift -> a.thrift"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Expected error message %q, got %q", tt.expected, tt.err.Error())
			}
		})
	}
}

func TestErrorIsKind(t *testing.T) {
	err := fmt.Errorf("loading entry: %w", NewFileNotFound("/x.proto"))

	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected wrapped error to match ErrFileNotFound")
	}
	if errors.Is(err, ErrFileNotFoundInMap) {
		t.Errorf("Expected wrapped error not to match ErrFileNotFoundInMap")
	}
	if KindOf(err) != KindFileNotFound {
		t.Errorf("Expected kind %v, got %v", KindFileNotFound, KindOf(err))
	}
	if KindOf(errors.New("plain")) != "" {
		t.Errorf("Expected empty kind for a plain error")
	}
}

func TestSyntaxErrorUnwrap(t *testing.T) {
	underlying := errors.New("unexpected token")
	err := NewSyntaxError("unexpected token", "/a.proto", 1, 2, underlying)

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}
	if err.Line != 1 || err.Column != 2 {
		t.Errorf("Expected Line/Column to be 1:2, got %d:%d", err.Line, err.Column)
	}
}

func TestImportCycleCopiesPath(t *testing.T) {
	cycle := []string{"a.thrift", "a.thrift"}
	err := NewImportCycle(cycle)
	cycle[0] = "changed"

	if err.Cycle[0] != "a.thrift" {
		t.Errorf("Expected cycle to be copied, got %v", err.Cycle)
	}
}

func TestConfigError(t *testing.T) {
	underlying := errors.New("invalid value")
	err := NewConfigError("field_name", "invalid_value", underlying)

	if err.Field != "field_name" {
		t.Errorf("Expected Field to be 'field_name', got %s", err.Field)
	}

	if err.Value != "invalid_value" {
		t.Errorf("Expected Value to be 'invalid_value', got %s", err.Value)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := `config error for field field_name (value invalid_value): invalid value`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestMultiError(t *testing.T) {
	err1 := NewFileNotFound("/a.thrift")
	err2 := NewInvalidInput("b.txt")
	err3 := errors.New("error 3")

	multiErr := NewMultiError([]error{err1, err2, err3})

	if len(multiErr.Errors) != 3 {
		t.Errorf("Expected 3 errors, got %d", len(multiErr.Errors))
	}

	errMsg := multiErr.Error()
	if len(errMsg) < 10 || errMsg[:10] != "3 errors: " {
		t.Errorf("Expected message to start with '3 errors: ', got %q", errMsg)
	}

	// errors.Is walks every member
	if !errors.Is(multiErr, ErrInvalidInput) {
		t.Errorf("Expected multi-error to match ErrInvalidInput")
	}

	singleErr := NewMultiError([]error{err3})
	if singleErr.Error() != "error 3" {
		t.Errorf("Expected 'error 3', got %q", singleErr.Error())
	}

	emptyErr := NewMultiError([]error{})
	if emptyErr.Error() != "no errors" {
		t.Errorf("Expected 'no errors', got %q", emptyErr.Error())
	}

	nilFiltered := NewMultiError([]error{err1, nil, err2, nil})
	if len(nilFiltered.Errors) != 2 {
		t.Errorf("Expected 2 errors after filtering nil, got %d", len(nilFiltered.Errors))
	}
}

func TestTimestamp(t *testing.T) {
	err := NewMissingNamespace("a.thrift")
	if err.Timestamp.IsZero() {
		t.Errorf("Expected non-zero timestamp")
	}

	now := time.Now()
	if err.Timestamp.After(now) || now.Sub(err.Timestamp) > time.Second {
		t.Errorf("Timestamp seems incorrect: %v", err.Timestamp)
	}
}

func BenchmarkSyntaxError(b *testing.B) {
	underlying := errors.New("underlying error")
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		err := NewSyntaxError("unexpected token", "/a.thrift", 10, 2, underlying)
		_ = err.Error()
	}
}
