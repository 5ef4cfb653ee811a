package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	// CreateActive inserts a new session holding the active slot for its
	// email. Slots held by sessions that expired without being ended are
	// released in the same transaction. A live holder surfaces as
	// ErrSessionAlreadyActive.
	CreateActive(ctx context.Context, session *CustomerSession, now time.Time) error
	FindActiveByEmail(ctx context.Context, email string, now time.Time) (*CustomerSession, error)
	FindByTokenHash(ctx context.Context, tokenHash string) (*CustomerSession, error)
	// UpdateAccount re-points an active session at another account.
	UpdateAccount(ctx context.Context, sessionID, accountID snowflake.ID) error
	// End deactivates a session and releases its slot. Ending an already
	// ended session is a no-op.
	End(ctx context.Context, sessionID snowflake.ID, endedAt time.Time) error
}
