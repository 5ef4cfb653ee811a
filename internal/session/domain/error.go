package domain

import "errors"

var (
	ErrInvalidRequest       = errors.New("invalid_request")
	ErrSessionAlreadyActive = errors.New("session_already_active")
	ErrNoActiveSession      = errors.New("no_active_session")
	ErrSessionNotFound      = errors.New("session_not_found")
	ErrSessionExpired       = errors.New("session_expired")
	ErrAccountInactive      = errors.New("account_inactive")
	ErrAccountEmailMismatch = errors.New("account_email_mismatch")
	ErrStorageUnavailable   = errors.New("storage_unavailable")
)
