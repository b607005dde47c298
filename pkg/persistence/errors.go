// Package persistence provides standardized error types for storage
// operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrEmailNotFound indicates an email was not found by the given identifier.
	ErrEmailNotFound = errors.New("email not found")

	// ErrCallRecordNotFound indicates a call record was not found.
	ErrCallRecordNotFound = errors.New("call record not found")

	// ErrRuleNotFound indicates a rule was not found by the given identifier.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrWorkflowNotFound indicates a workflow was not found.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrTemplateNotFound indicates a message template was not found.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrCredentialsNotFound indicates no messaging credentials could be
	// resolved for a project, not even platform-level ones.
	ErrCredentialsNotFound = errors.New("messaging credentials not found")
)

// StoreError wraps storage errors with operation context.
type StoreError struct {
	Op     string // Operation being performed (e.g., "GetByID", "Save")
	Entity string // Entity kind (e.g., "rule", "workflow")
	ID     string // Entity ID if applicable
	Err    error  // Underlying error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s operation failed for %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	}

	return fmt.Sprintf("%s operation failed for %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for store errors.
func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStoreError creates a new store error with context.
func NewStoreError(op, entity, id string, err error) *StoreError {
	return &StoreError{Op: op, Entity: entity, ID: id, Err: err}
}

// IsEmailNotFound checks if an error indicates a missing email.
func IsEmailNotFound(err error) bool {
	return errors.Is(err, ErrEmailNotFound)
}

// IsCallRecordNotFound checks if an error indicates a missing call record.
func IsCallRecordNotFound(err error) bool {
	return errors.Is(err, ErrCallRecordNotFound)
}

// IsRuleNotFound checks if an error indicates a missing rule.
func IsRuleNotFound(err error) bool {
	return errors.Is(err, ErrRuleNotFound)
}

// IsWorkflowNotFound checks if an error indicates a missing workflow.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsTemplateNotFound checks if an error indicates a missing template.
func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

// IsCredentialsNotFound checks if an error indicates missing credentials.
func IsCredentialsNotFound(err error) bool {
	return errors.Is(err, ErrCredentialsNotFound)
}
