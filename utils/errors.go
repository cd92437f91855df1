package utils

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the stage-specific category of a failure
type ErrorType string

const (
	// Calldata encoding
	ErrorTypeSignatureParse        ErrorType = "signature_parse"
	ErrorTypeArgumentCountMismatch ErrorType = "argument_count_mismatch"
	ErrorTypeTypeResolution        ErrorType = "type_resolution"
	ErrorTypeArgumentCoercion      ErrorType = "argument_coercion"
	ErrorTypeEncoding              ErrorType = "encoding"

	// Transaction submission
	ErrorTypeInvalidKey          ErrorType = "invalid_key"
	ErrorTypeNetworkQuery        ErrorType = "network_query"
	ErrorTypeSigning             ErrorType = "signing"
	ErrorTypeSubmission          ErrorType = "submission"
	ErrorTypeConfirmationTimeout ErrorType = "confirmation_timeout"
	ErrorTypeConfirmation        ErrorType = "confirmation"

	// Trace analysis
	ErrorTypeTraceRequest         ErrorType = "trace_request"
	ErrorTypeResponseParse        ErrorType = "response_parse"
	ErrorTypeMissingResult        ErrorType = "missing_result"
	ErrorTypeTraceDeserialization ErrorType = "trace_deserialization"
	ErrorTypeTraceTooShort        ErrorType = "trace_too_short"
	ErrorTypeInkUnderflow         ErrorType = "ink_underflow"

	// Setup
	ErrorTypeConfig ErrorType = "config"
)

// InkBenchError is a labelled failure carrying its cause and some context
type InkBenchError struct {
	Type        ErrorType
	Message     string
	OriginalErr error
	Context     map[string]interface{}
}

// Error implements the error interface
func (e *InkBenchError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", e.Type, e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s=%v", k, e.Context[k])
		}
		sb.WriteString(")")
	}
	if e.OriginalErr != nil {
		fmt.Fprintf(&sb, ": %v", e.OriginalErr)
	}
	return sb.String()
}

// Unwrap implements the error unwrapping interface
func (e *InkBenchError) Unwrap() error {
	return e.OriginalErr
}

// Is matches any InkBenchError of the same type
func (e *InkBenchError) Is(target error) bool {
	var targetErr *InkBenchError
	if errors.As(target, &targetErr) {
		return e.Type == targetErr.Type
	}
	return false
}

// AddContext adds contextual information to the error
func (e *InkBenchError) AddContext(key string, value interface{}) *InkBenchError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new InkBenchError
func NewError(errType ErrorType, message string) *InkBenchError {
	return &InkBenchError{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with InkBenchError
func WrapError(errType ErrorType, message string, originalErr error) *InkBenchError {
	return &InkBenchError{
		Type:        errType,
		Message:     message,
		OriginalErr: originalErr,
		Context:     make(map[string]interface{}),
	}
}

// IsType reports whether any error in err's chain is an InkBenchError of the given type
func IsType(err error, errType ErrorType) bool {
	return errors.Is(err, &InkBenchError{Type: errType})
}

// TypeOf returns the type of the outermost InkBenchError in err's chain
func TypeOf(err error) (ErrorType, bool) {
	var ibErr *InkBenchError
	if errors.As(err, &ibErr) {
		return ibErr.Type, true
	}
	return "", false
}

// NewCountMismatchError reports a signature/argument count mismatch
func NewCountMismatchError(want, got int) *InkBenchError {
	return NewError(ErrorTypeArgumentCountMismatch,
		fmt.Sprintf("mismatch number of arguments (want %d; got %d)", want, got)).
		AddContext("want", want).
		AddContext("got", got)
}

// NewConfigError creates a configuration-related error
func NewConfigError(message string, field string) *InkBenchError {
	return NewError(ErrorTypeConfig, message).
		AddContext("field", field)
}
