package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/portalauth/internal/account/domain"
)

type CreateSessionRequest struct {
	Email           string
	AccountID       string
	ClientIP        string
	ClientUserAgent string
	Duration        time.Duration
}

type CreateSessionResult struct {
	SessionID snowflake.ID
	// RawToken is returned once at creation and never stored.
	RawToken  string
	ExpiresAt time.Time
}

// Service enforces the session state machine: NoSession → Active →
// {Expired, Ended}. Expired and Ended are terminal for a row; a fresh
// CreateSession starts a new one.
//
// Storage failures on these paths propagate to the caller. Masking them
// would let the single-active-session invariant silently break, so the
// session service fails closed where the rate limiter fails open.
type Service interface {
	HasActiveSession(ctx context.Context, email string) (bool, error)
	CreateSession(ctx context.Context, req CreateSessionRequest) (*CreateSessionResult, error)
	// SwitchAccount re-points the session at another account belonging to
	// the same email. The token and expiry are deliberately kept: the row
	// is the grant, the account pointer is mutable state inside it.
	SwitchAccount(ctx context.Context, rawToken, accountID string) (accountdomain.CustomerAccount, error)
	EndSession(ctx context.Context, rawToken string) error
	// ValidateToken resolves a raw token to its session and bound account.
	// A session past its expiry is reported as ErrSessionExpired even while
	// is_active remains set in storage.
	ValidateToken(ctx context.Context, rawToken string) (*CustomerSession, accountdomain.CustomerAccount, error)
}
