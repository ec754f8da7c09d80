package types

import "errors"

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Data access errors. Handlers map these to HTTP statuses with errors.Is.
var (
	// ErrValidation wraps malformed or missing request fields. It is
	// returned before the store is touched.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means the referenced project, prompt, or template does
	// not exist (or the prompt does not belong to the given project).
	ErrNotFound = errors.New("entity not found")

	// ErrDefaultTemplate is the refusal to delete a seeded default template.
	ErrDefaultTemplate = errors.New("cannot delete default templates")

	// ErrInvalidField is returned for a prompt field outside the editable set.
	ErrInvalidField = errors.New("invalid prompt field")
)
