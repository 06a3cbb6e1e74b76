package errors

import (
	"fmt"
	"strings"
)

// NewMissingParameterError creates an error for a required parameter without a value
func NewMissingParameterError(paramID, owner string) *ValidationError {
	msg := fmt.Sprintf("'%s' is a required parameter", paramID)
	if owner != "" {
		msg = fmt.Sprintf("%s: %s", owner, msg)
	}
	return NewValidationError(CodeMissingParameter, msg, "Parameter resolution").
		WithContext("parameter", paramID).
		WithTroubleshooting(
			"Set a value for the parameter in the editor",
			"Check the parameter catalog for the list of required parameters",
		)
}

// NewUnresolvedLinkError creates an error for a link endpoint that names no node
func NewUnresolvedLinkError(nodeID string) *ValidationError {
	return NewValidationError(CodeUnresolvedLink,
		fmt.Sprintf("unable to find node [%s] referenced by links", nodeID),
		"Link graph construction").
		WithContext("node", nodeID).
		WithTroubleshooting(
			"Remove links that point at deleted nodes",
			"Verify the document was saved completely",
		)
}

// NewCycleError creates an error for link sets that do not form a DAG
func NewCycleError(cycle []string) *ValidationError {
	err := NewValidationError(CodeCycle, "graph is not a valid DAG", "Link graph validation")
	if len(cycle) > 0 {
		err = err.WithContext("cycle", strings.Join(cycle, " -> "))
	}
	return err.WithTroubleshooting("Remove one of the links forming the cycle")
}

// NewDuplicateIdentifierError creates an error for two tasks sharing a raw identifier
func NewDuplicateIdentifierError(identifier string) *ValidationError {
	return NewValidationError(CodeDuplicateIdentifier,
		fmt.Sprintf("duplicate task identifier '%s'", identifier),
		"Identifier resolution").
		WithContext("identifier", identifier).
		WithTroubleshooting("Give every task a unique identifier")
}

// NewUnknownTypeError creates an error for a task type missing from the catalog
func NewUnknownTypeError(typeName string) *ValidationError {
	return NewValidationError(CodeUnknownType,
		fmt.Sprintf("unknown task type '%s'", typeName),
		"Catalog lookup").
		WithContext("type", typeName).
		WithTroubleshooting(
			"Run 'windmill catalog' to list the available task types",
			"Check the catalog path in the configuration",
		)
}

// NewInvalidParameterError creates an error for a parameter value that does not fit its type
func NewInvalidParameterError(paramID, paramType string, originalErr error) *ValidationError {
	return NewValidationError(CodeInvalidParameter,
		fmt.Sprintf("invalid value for '%s' (%s): %v", paramID, paramType, originalErr),
		"Parameter resolution").
		WithContext("parameter", paramID).
		WithContext("type", paramType).
		WithOriginalError(originalErr)
}

// NewInvalidDocumentError creates an error for malformed input documents
func NewInvalidDocumentError(reason string, originalErr error) *ValidationError {
	return NewValidationError(CodeInvalidDocument,
		fmt.Sprintf("invalid document: %s", reason),
		"Document decoding").
		WithOriginalError(originalErr)
}

// NewLoadError wraps a failure raised while loading a rendered program
func NewLoadError(originalErr error) *ValidationError {
	return NewValidationError(CodeLoad,
		fmt.Sprintf("rendered workflow is invalid: %v", originalErr),
		"Program load").
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Check parameter combinations that are only enforced by the task types",
			"Set start_date on the workflow or on every task",
		)
}

// NewRenderError creates an error for a parameter value without a program literal
func NewRenderError(owner string, originalErr error) *ValidationError {
	return NewValidationError(CodeRender,
		fmt.Sprintf("%s: unable to render parameter: %v", owner, originalErr),
		"Program rendering").
		WithContext("owner", owner).
		WithOriginalError(originalErr)
}

// NewInvalidProgramError wraps a failure raised while loading a program for
// decompilation
func NewInvalidProgramError(filename string, originalErr error) *ValidationError {
	return NewValidationError(CodeInvalidProgram,
		fmt.Sprintf("%s is not a valid workflow program: %v", filename, originalErr),
		"Program load").
		WithContext("file", filename).
		WithOriginalError(originalErr)
}

// NewWorkflowCountError creates an error for a program that does not expose
// exactly one workflow
func NewWorkflowCountError(filename string, ids []string) *ValidationError {
	msg := fmt.Sprintf("%s does not define a workflow", filename)
	if len(ids) > 0 {
		msg = fmt.Sprintf("%s defines %d workflows (%s); expected exactly one",
			filename, len(ids), strings.Join(ids, ", "))
	}
	return NewValidationError(CodeWorkflowCount, msg, "Workflow lookup").
		WithContext("file", filename).
		WithTroubleshooting("Assign exactly one DAG(...) to a global variable")
}
