package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidID          = errors.New("invalid_account_id")
	ErrNotFound           = errors.New("account_not_found")
	ErrStorageUnavailable = errors.New("storage_unavailable")
)

// Service resolves which accounts an email can act as. Unlike the rate
// limiter, resolution never fails open: an unreachable store surfaces as
// ErrStorageUnavailable rather than an empty result, because "no accounts"
// is a user-facing answer in its own right.
type Service interface {
	// GetAccountsByEmail returns every account registered under email,
	// primary accounts first. An unknown email yields an empty slice.
	GetAccountsByEmail(ctx context.Context, email string) ([]CustomerAccount, error)
	GetByID(ctx context.Context, id string) (CustomerAccount, error)
}
