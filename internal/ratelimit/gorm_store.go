package ratelimit

import (
	"context"
	"time"

	"github.com/smallbiznis/portalauth/pkg/db"
	"gorm.io/gorm"
)

// RateLimitRecord is one counting window for an (operation, identity) key.
// Rows are created on first request and updated in place; stale rows are
// harmless and garbage-collected out of band, if ever.
type RateLimitRecord struct {
	LimitKey    string    `gorm:"column:limit_key;primaryKey"`
	Count       int       `gorm:"column:count;not null"`
	WindowStart time.Time `gorm:"column:window_start;not null"`
}

// TableName sets the database table name.
func (RateLimitRecord) TableName() string { return "rate_limit_records" }

// GormStore counts windows in the relational store. Every mutation is a
// single guarded statement so concurrent bursts cannot push a counter past
// the ceiling the way a read-then-write implementation can.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{db: conn}
}

func (s *GormStore) Take(ctx context.Context, key string, policy Policy, now time.Time) (Result, error) {
	windowFloor := now.Add(-policy.Window)

	// Common case: window open, budget left. The ceiling guard rides on
	// the UPDATE itself.
	res, err := s.increment(ctx, key, policy, windowFloor)
	if err != nil {
		return Result{}, err
	}
	if res != nil {
		return *res, nil
	}

	// Window elapsed: reset to a fresh window counting this request.
	tx := s.db.WithContext(ctx).Model(&RateLimitRecord{}).
		Where("limit_key = ? AND window_start <= ?", key, windowFloor).
		Updates(map[string]any{"count": 1, "window_start": now})
	if tx.Error != nil {
		return Result{}, tx.Error
	}
	if tx.RowsAffected == 1 {
		return freshWindow(policy, now), nil
	}

	// First request for this key.
	err = s.db.WithContext(ctx).Create(&RateLimitRecord{
		LimitKey:    key,
		Count:       1,
		WindowStart: now,
	}).Error
	if err == nil {
		return freshWindow(policy, now), nil
	}
	if !db.IsDuplicateKeyErr(err) {
		return Result{}, err
	}

	// The row exists after all: either we lost an insert race or the
	// counter sits at the ceiling. One more guarded increment settles it.
	res, err = s.increment(ctx, key, policy, windowFloor)
	if err != nil {
		return Result{}, err
	}
	if res != nil {
		return *res, nil
	}
	return s.denied(ctx, key, policy)
}

// increment bumps the counter iff the window is still open and below the
// ceiling. Returns nil when no row qualified.
func (s *GormStore) increment(ctx context.Context, key string, policy Policy, windowFloor time.Time) (*Result, error) {
	tx := s.db.WithContext(ctx).Model(&RateLimitRecord{}).
		Where("limit_key = ? AND window_start > ? AND count < ?", key, windowFloor, policy.MaxRequests).
		Update("count", gorm.Expr("count + 1"))
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, nil
	}

	record, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	remaining := policy.MaxRequests - record.Count
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:   true,
		Remaining: remaining,
		ResetAt:   record.WindowStart.Add(policy.Window),
	}, nil
}

// denied reports a ceiling hit without touching the counter.
func (s *GormStore) denied(ctx context.Context, key string, policy Policy) (Result, error) {
	record, err := s.load(ctx, key)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Allowed:   false,
		Remaining: 0,
		ResetAt:   record.WindowStart.Add(policy.Window),
	}, nil
}

func (s *GormStore) load(ctx context.Context, key string) (*RateLimitRecord, error) {
	var record RateLimitRecord
	err := s.db.WithContext(ctx).Where("limit_key = ?", key).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func freshWindow(policy Policy, now time.Time) Result {
	return Result{
		Allowed:   true,
		Remaining: policy.MaxRequests - 1,
		ResetAt:   now.Add(policy.Window),
	}
}
