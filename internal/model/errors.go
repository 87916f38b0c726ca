package model

import "errors"

// Error taxonomy shared by services and controllers. Services wrap these with
// fmt.Errorf("...: %w", ...) so callers can classify with errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrDuplicateID          = errors.New("duplicate id")
	ErrNotAssigned          = errors.New("test not assigned to student")
	ErrNoActiveSession      = errors.New("no active test session")
	ErrSessionClosed        = errors.New("test session already closed")
	ErrConfirmationRequired = errors.New("submission requires confirmation")
	ErrMalformedImport      = errors.New("malformed import payload")
)
