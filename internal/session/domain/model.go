// Package domain contains core types for the customer session service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CustomerSession is one authenticated browsing session for one email,
// bound to exactly one customer account at a time.
//
// The single-active-session invariant is enforced by ActiveEmail: it holds
// the session's email for as long as the session is the live one for that
// email, and is NULL otherwise. The unique index on the column lets the
// database arbitrate concurrent creates; application code never does a
// read-then-write check.
type CustomerSession struct {
	ID                snowflake.ID `gorm:"primaryKey"`
	Email             string       `gorm:"not null;index"`
	CustomerAccountID snowflake.ID `gorm:"column:customer_account_id;not null"`
	SessionTokenHash  string       `gorm:"column:session_token_hash;type:text;not null;uniqueIndex"`
	ActiveEmail       *string      `gorm:"column:active_email;uniqueIndex"`
	ClientIP          string       `gorm:"column:client_ip;type:text"`
	ClientUserAgent   string       `gorm:"column:client_user_agent;type:text"`
	IsActive          bool         `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	ExpiresAt         time.Time    `gorm:"column:expires_at;not null;index"`
	EndedAt           *time.Time   `gorm:"column:ended_at"`
}

// TableName sets the database table name.
func (CustomerSession) TableName() string { return "customer_sessions" }

// ExpiredAt reports whether the session has passed its expiry at the given
// instant. Expiry is evaluated at read time; rows are never swept.
func (s *CustomerSession) ExpiredAt(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
