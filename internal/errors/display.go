package errors

import (
	"fmt"
	"strings"
)

// DisplayError formats an error for user-friendly display
func DisplayError(err error) string {
	if ve, ok := AsValidation(err); ok {
		return ve.Details()
	}

	return fmt.Sprintf("Error: %v", err)
}

// DisplayErrorSummary provides a brief summary of the error for logs
func DisplayErrorSummary(err error) string {
	if ve, ok := AsValidation(err); ok {
		return fmt.Sprintf("VALIDATION-%s: %s", ve.Code, ve.Message)
	}

	errStr := err.Error()
	if len(errStr) > 100 {
		return errStr[:97] + "..."
	}
	return errStr
}

// FormatForCLI formats an error for command-line display with proper spacing
func FormatForCLI(err error) string {
	ve, ok := AsValidation(err)
	if !ok {
		return fmt.Sprintf("\nError: %v\n", err)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\nValidation Error [VALIDATION-%s]\n", ve.Code))
	sb.WriteString(fmt.Sprintf("  %s\n", ve.Message))

	if ve.Operation != "" {
		sb.WriteString(fmt.Sprintf("\nFailed Operation: %s\n", ve.Operation))
	}

	if len(ve.Context) > 0 {
		sb.WriteString("\nDetails:\n")
		for _, key := range ve.contextKeys() {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", key, ve.Context[key]))
		}
	}

	if len(ve.Troubleshooting) > 0 {
		sb.WriteString("\nHow to resolve:\n")
		for i, step := range ve.Troubleshooting {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
		}
	}

	return sb.String()
}

// GetErrorCode extracts the error code for reporting
func GetErrorCode(err error) string {
	if ve, ok := AsValidation(err); ok {
		return "VALIDATION-" + ve.Code
	}
	return "UNKNOWN"
}
