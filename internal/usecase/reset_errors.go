package usecase

import "errors"

// Password-reset outcomes. Handlers map these to statuses with errors.Is;
// the text doubles as the stable error_type sent to clients.
var (
	ErrNotFound         = errors.New("not_found")
	ErrInvalidFormat    = errors.New("invalid_format")
	ErrWeakPassword     = errors.New("weak_password")
	ErrNoPendingRequest = errors.New("no_pending_request")
	ErrAlreadyUsed      = errors.New("already_used")
	ErrExpired          = errors.New("expired")
	ErrIncorrectCode    = errors.New("incorrect_code")
	ErrTooManyAttempts  = errors.New("too_many_attempts")

	// Infrastructure failures; retryable by the caller.
	ErrStorageFailure   = errors.New("storage_failure")
	ErrTransportFailure = errors.New("transport_failure")
)
