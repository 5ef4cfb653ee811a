// Package domain contains core types for customer account resolution.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// CustomerAccount is one billable entity a person can act as. Several
// accounts (a primary plus sub-accounts) may share one login email.
type CustomerAccount struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerName    string       `gorm:"not null" json:"customer_name"`
	Email           string       `gorm:"not null;index" json:"email"`
	BillingAddress  string       `gorm:"type:text" json:"billing_address,omitempty"`
	DeliveryAddress string       `gorm:"type:text" json:"delivery_address,omitempty"`
	Phone           string       `json:"phone,omitempty"`
	// Credit limit in minor currency units, never negative.
	CreditLimitCents int64         `gorm:"not null;default:0" json:"credit_limit_cents"`
	IsPrimaryAccount bool          `gorm:"column:is_primary_account;not null;default:false" json:"is_primary_account"`
	ParentAccountID  *snowflake.ID `gorm:"column:parent_account_id;index" json:"parent_account_id,omitempty"`
	AccountStatus    string        `gorm:"not null;default:'active'" json:"account_status"`

	// Optional billing defaults; nil means unset.
	DefaultDueDateDays     *int   `gorm:"column:default_due_date_days" json:"default_due_date_days,omitempty"`
	DefaultHourlyRateCents *int64 `gorm:"column:default_hourly_rate_cents" json:"default_hourly_rate_cents,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (CustomerAccount) TableName() string { return "customer_accounts" }

// IsActive reports whether sessions may be created against the account.
func (a CustomerAccount) IsActive() bool {
	return a.AccountStatus == StatusActive
}
