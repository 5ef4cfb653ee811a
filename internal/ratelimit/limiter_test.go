package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smallbiznis/portalauth/internal/clock"
	"github.com/smallbiznis/portalauth/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestLimiter(t *testing.T) (*Limiter, *clock.FakeClock, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&RateLimitRecord{}))

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewLimiter(zap.NewNop(), fake, NewGormStore(conn)), fake, conn
}

func TestFixedWindowBudget(t *testing.T) {
	limiter, fake, _ := newTestLimiter(t)
	policy := Policy{MaxRequests: 3, Window: time.Minute}
	windowStart := fake.Now()

	for i := 0; i < 3; i++ {
		res := limiter.Check(context.Background(), "session:create", "203.0.113.7", policy)
		assert.True(t, res.Allowed, "request %d within budget", i+1)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res := limiter.Check(context.Background(), "session:create", "203.0.113.7", policy)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, windowStart.Add(time.Minute), res.ResetAt)
}

func TestDeniedRequestDoesNotConsumeBudget(t *testing.T) {
	limiter, _, conn := newTestLimiter(t)
	policy := Policy{MaxRequests: 2, Window: time.Minute}

	for i := 0; i < 5; i++ {
		limiter.Check(context.Background(), "session:create", "203.0.113.7", policy)
	}

	var record RateLimitRecord
	require.NoError(t, conn.Where("limit_key = ?", "session:create:203.0.113.7").First(&record).Error)
	assert.Equal(t, 2, record.Count, "denied requests must not advance the counter")
}

func TestWindowResetsAsAWhole(t *testing.T) {
	limiter, fake, _ := newTestLimiter(t)
	policy := Policy{MaxRequests: 3, Window: time.Minute}

	for i := 0; i < 4; i++ {
		limiter.Check(context.Background(), "account:lookup", "203.0.113.7", policy)
	}
	assert.False(t, limiter.Check(context.Background(), "account:lookup", "203.0.113.7", policy).Allowed)

	fake.Advance(61 * time.Second)

	res := limiter.Check(context.Background(), "account:lookup", "203.0.113.7", policy)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Remaining, "fresh window counts the current request")
	assert.Equal(t, fake.Now().Add(time.Minute), res.ResetAt)
}

func TestKeysAreIndependent(t *testing.T) {
	limiter, _, _ := newTestLimiter(t)
	policy := Policy{MaxRequests: 1, Window: time.Minute}

	assert.True(t, limiter.Check(context.Background(), "session:create", "203.0.113.7", policy).Allowed)
	assert.False(t, limiter.Check(context.Background(), "session:create", "203.0.113.7", policy).Allowed)

	// Same identity, different operation.
	assert.True(t, limiter.Check(context.Background(), "account:lookup", "203.0.113.7", policy).Allowed)
	// Same operation, different identity.
	assert.True(t, limiter.Check(context.Background(), "session:create", "198.51.100.4", policy).Allowed)
}

func TestConcurrentChecksRespectCeiling(t *testing.T) {
	limiter, _, conn := newTestLimiter(t)
	policy := Policy{MaxRequests: 5, Window: time.Minute}

	const attempts = 20
	var wg sync.WaitGroup
	results := make([]Result, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = limiter.Check(context.Background(), "session:create", "203.0.113.7", policy)
		}(i)
	}
	wg.Wait()

	allowed := 0
	for _, res := range results {
		if res.Allowed {
			allowed++
		}
	}
	assert.Equal(t, 5, allowed)

	var record RateLimitRecord
	require.NoError(t, conn.Where("limit_key = ?", "session:create:203.0.113.7").First(&record).Error)
	assert.Equal(t, 5, record.Count)
}

type failingStore struct{}

func (failingStore) Take(context.Context, string, Policy, time.Time) (Result, error) {
	return Result{}, errors.New("store down")
}

func TestStoreFailureFailsOpen(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	limiter := NewLimiter(zap.NewNop(), fake, failingStore{})
	policy := Policy{MaxRequests: 1, Window: time.Minute}

	for i := 0; i < 3; i++ {
		res := limiter.Check(context.Background(), "session:create", "203.0.113.7", policy)
		assert.True(t, res.Allowed, "storage failure must not block requests")
	}
}

func TestNilStoreAllowsEverything(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	limiter := NewLimiter(zap.NewNop(), fake, nil)

	assert.False(t, limiter.Enabled())
	res := limiter.Check(context.Background(), "session:create", "203.0.113.7", Policy{MaxRequests: 1, Window: time.Minute})
	assert.True(t, res.Allowed)
}
