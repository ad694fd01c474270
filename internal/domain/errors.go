package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound        = errors.New("domain: not found")
	ErrConflict        = errors.New("domain: conflict")
	ErrNoCase          = errors.New("domain: task has no case identifier")
	ErrNoParent        = errors.New("domain: parent case not found")
	ErrDerived         = errors.New("domain: field is derived from subtasks")
	ErrConfirmRequired = errors.New("domain: deleting subtasks requires confirmation")
	ErrBadNature       = errors.New("domain: unknown nature value")
)
