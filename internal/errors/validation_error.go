package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validation error codes
const (
	CodeMissingParameter    = "001"
	CodeUnresolvedLink      = "002"
	CodeCycle               = "003"
	CodeDuplicateIdentifier = "004"
	CodeUnknownType         = "005"
	CodeInvalidParameter    = "006"
	CodeInvalidDocument     = "007"
	CodeRender              = "008"
	CodeLoad                = "009"
	CodeInvalidProgram      = "010"
	CodeWorkflowCount       = "011"
)

// ValidationError is the single error kind raised while converting between
// documents and programs. Callers tell failures apart by Code and Message.
type ValidationError struct {
	Code            string
	Message         string
	Operation       string
	Context         map[string]interface{}
	Troubleshooting []string
	OriginalError   error
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap returns the original error for error chain compatibility
func (e *ValidationError) Unwrap() error {
	return e.OriginalError
}

// Details renders the error with its operation, context and troubleshooting steps.
func (e *ValidationError) Details() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("VALIDATION-%s: %s", e.Code, e.Message))

	if e.Operation != "" {
		sb.WriteString(fmt.Sprintf("\nOperation: %s", e.Operation))
	}

	if len(e.Context) > 0 {
		sb.WriteString("\nContext:")
		for _, key := range e.contextKeys() {
			sb.WriteString(fmt.Sprintf("\n  %s: %v", key, e.Context[key]))
		}
	}

	if len(e.Troubleshooting) > 0 {
		sb.WriteString("\nTroubleshooting:")
		for i, step := range e.Troubleshooting {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	if e.OriginalError != nil {
		sb.WriteString(fmt.Sprintf("\nUnderlying error: %v", e.OriginalError))
	}

	return sb.String()
}

func (e *ValidationError) contextKeys() []string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewValidationError creates a new validation error with the specified parameters
func NewValidationError(code, message, operation string) *ValidationError {
	return &ValidationError{
		Code:            code,
		Message:         message,
		Operation:       operation,
		Context:         make(map[string]interface{}),
		Troubleshooting: []string{},
	}
}

// Newf creates a validation error with a formatted message and no operation.
func Newf(code, format string, args ...interface{}) *ValidationError {
	return NewValidationError(code, fmt.Sprintf(format, args...), "")
}

// WithContext adds context information to the error
func (e *ValidationError) WithContext(key string, value interface{}) *ValidationError {
	e.Context[key] = value
	return e
}

// WithTroubleshooting adds troubleshooting steps to the error
func (e *ValidationError) WithTroubleshooting(steps ...string) *ValidationError {
	e.Troubleshooting = append(e.Troubleshooting, steps...)
	return e
}

// WithOriginalError adds the original error to the validation error
func (e *ValidationError) WithOriginalError(err error) *ValidationError {
	e.OriginalError = err
	return e
}

// AsValidation reports whether err (or anything it wraps) is a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	_, ok := AsValidation(err)
	return ok
}

// HasCode reports whether err is a ValidationError carrying the given code.
func HasCode(err error, code string) bool {
	ve, ok := AsValidation(err)
	return ok && ve.Code == code
}
