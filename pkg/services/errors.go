// Package services provides the application services the API and CLI are
// built on, plus standardized error classification for HTTP mapping.
package services

import (
	"errors"

	"github.com/taskpilot/taskpilot/pkg/persistence"
	"github.com/taskpilot/taskpilot/pkg/templates"
	"github.com/taskpilot/taskpilot/pkg/workflow"
)

// Not-found errors (404).
var (
	ErrWorkflowNotFound  = persistence.ErrWorkflowNotFound
	ErrExecutionNotFound = persistence.ErrExecutionNotFound
	ErrTemplateNotFound  = templates.ErrTemplateNotFound
)

// Conflict errors (409).
var (
	ErrWorkflowInactive = workflow.ErrWorkflowInactive
)

// IsValidationError reports whether an error is a client-side graph or
// config problem that should map to HTTP 400.
func IsValidationError(err error) bool {
	var validationErr *workflow.ValidationError

	return errors.As(err, &validationErr)
}

// IsNotFoundError reports whether an error should map to HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrExecutionNotFound) ||
		errors.Is(err, ErrTemplateNotFound)
}

// IsConflictError reports whether an error should map to HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrWorkflowInactive)
}

// ValidationCode extracts the invariant code from a validation error, or ""
// when the error is not a validation error.
func ValidationCode(err error) string {
	var validationErr *workflow.ValidationError
	if errors.As(err, &validationErr) {
		return string(validationErr.Code)
	}

	return ""
}
