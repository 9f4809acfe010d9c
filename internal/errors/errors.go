package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind classifies failures of the IDL front end
type Kind string

const (
	// Resolution errors
	KindFileNotFound         Kind = "file_not_found"
	KindFileNotFoundInMap    Kind = "file_not_found_in_map"
	KindIncludeNotFoundInMap Kind = "include_not_found_in_map"
	KindImportCycle          Kind = "import_cycle"

	// Source errors
	KindSyntax           Kind = "syntax"
	KindMissingNamespace Kind = "missing_namespace"
	KindInvalidPathParam Kind = "invalid_path_param"

	// Caller errors
	KindInvalidInput Kind = "invalid_input"
)

// Sentinels for errors.Is matching by kind
var (
	ErrFileNotFound         = &Error{Kind: KindFileNotFound}
	ErrFileNotFoundInMap    = &Error{Kind: KindFileNotFoundInMap}
	ErrIncludeNotFoundInMap = &Error{Kind: KindIncludeNotFoundInMap}
	ErrImportCycle          = &Error{Kind: KindImportCycle}
	ErrSyntax               = &Error{Kind: KindSyntax}
	ErrMissingNamespace     = &Error{Kind: KindMissingNamespace}
	ErrInvalidPathParam     = &Error{Kind: KindInvalidPathParam}
	ErrInvalidInput         = &Error{Kind: KindInvalidInput}
)

// Error is a fatal failure of a parse call. Only the fields relevant to Kind are set.
type Error struct {
	Kind       Kind
	Path       string
	Message    string
	Line       int
	Column     int
	Field      string
	TypeName   string
	Cycle      []string
	Underlying error
	Timestamp  time.Time
}

func newError(kind Kind) *Error {
	return &Error{Kind: kind, Timestamp: time.Now()}
}

// NewFileNotFound reports that no candidate path exists on disk
func NewFileNotFound(firstCandidate string) *Error {
	e := newError(KindFileNotFound)
	e.Path = firstCandidate
	return e
}

// NewFileNotFoundInMap reports an entry path missing from the content map
func NewFileNotFoundInMap(path string) *Error {
	e := newError(KindFileNotFoundInMap)
	e.Path = path
	return e
}

// NewIncludeNotFoundInMap reports an included file missing from the content map.
// path carries its extension.
func NewIncludeNotFoundInMap(path string) *Error {
	e := newError(KindIncludeNotFoundInMap)
	e.Path = path
	return e
}

// NewSyntaxError wraps a grammar error with the absolute path of the file
func NewSyntaxError(message, absPath string, line, column int, err error) *Error {
	e := newError(KindSyntax)
	e.Message = message
	e.Path = absPath
	e.Line = line
	e.Column = column
	e.Underlying = err
	return e
}

// NewMissingNamespace reports a Thrift file without a usable target namespace
func NewMissingNamespace(path string) *Error {
	e := newError(KindMissingNamespace)
	e.Path = path
	return e
}

// NewInvalidPathParam reports a path-bound field whose type is not string or integer
func NewInvalidPathParam(field, typeName string) *Error {
	e := newError(KindInvalidPathParam)
	e.Field = field
	e.TypeName = typeName
	return e
}

// NewInvalidInput reports an entry path with an unrecognized extension
func NewInvalidInput(path string) *Error {
	e := newError(KindInvalidInput)
	e.Path = path
	return e
}

// NewImportCycle reports a file that transitively includes itself.
// cycle starts and ends with the same path.
func NewImportCycle(cycle []string) *Error {
	e := newError(KindImportCycle)
	e.Cycle = append([]string(nil), cycle...)
	return e
}

// WithUnderlying attaches a cause
func (e *Error) WithUnderlying(err error) *Error {
	e.Underlying = err
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	switch e.Kind {
	case KindFileNotFound:
		return "no such file: " + e.Path
	case KindFileNotFoundInMap:
		return `file "` + e.Path + `" does not exist in fileContentMap`
	case KindIncludeNotFoundInMap:
		return "file " + e.Path + " does not exist in fileContentMap"
	case KindSyntax:
		return e.Message + "(" + e.Path + ":" + strconv.Itoa(e.Line) + ":" + strconv.Itoa(e.Column) + ")"
	case KindMissingNamespace:
		return "a js namespace should be specifed"
	case KindInvalidPathParam:
		return fmt.Sprintf("the type of path parameter '%s' in '%s' should be string or integer", e.Field, e.TypeName)
	case KindInvalidInput:
		return `invalid filePath: "` + e.Path + `"`
	case KindImportCycle:
		return "import cycle detected: " + strings.Join(e.Cycle, " -> ")
	}
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Underlying)
	}
	return string(e.Kind)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
