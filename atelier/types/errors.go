package types

import "errors"

// Failure taxonomy. Controllers return these (possibly wrapped);
// routes map them to HTTP statuses with errors.Is.
var (
	ErrValidation         = errors.New("missing or invalid fields")
	ErrDuplicateEmail     = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("session not found")
	ErrEmptyHistory       = errors.New("chat history is required")
	ErrUpstream           = errors.New("ai generation failed")
	ErrMalformedResponse  = errors.New("ai returned malformed code")
)
