package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/portalauth/internal/account/domain"
	accountrepo "github.com/smallbiznis/portalauth/internal/account/repository"
	accountservice "github.com/smallbiznis/portalauth/internal/account/service"
	"github.com/smallbiznis/portalauth/internal/clock"
	"github.com/smallbiznis/portalauth/internal/session/domain"
	"github.com/smallbiznis/portalauth/internal/session/repository"
	"github.com/smallbiznis/portalauth/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   domain.Service
	clock *clock.FakeClock
	db    *gorm.DB
	node  *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&accountdomain.CustomerAccount{},
		&domain.CustomerSession{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	accounts := accountservice.New(accountservice.Params{
		Log:  zap.NewNop(),
		Repo: accountrepo.New(conn),
	})

	svc := New(Params{
		Log:      zap.NewNop(),
		Clock:    fake,
		GenID:    node,
		Repo:     repository.New(conn),
		Accounts: accounts,
	})

	return &fixture{svc: svc, clock: fake, db: conn, node: node}
}

func (f *fixture) seedAccount(t *testing.T, name, email, status string, primary bool) accountdomain.CustomerAccount {
	t.Helper()

	account := accountdomain.CustomerAccount{
		ID:               f.node.Generate(),
		CustomerName:     name,
		Email:            email,
		IsPrimaryAccount: primary,
		AccountStatus:    status,
		CreatedAt:        f.clock.Now(),
		UpdatedAt:        f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&account).Error)
	return account
}

func (f *fixture) create(email string, account accountdomain.CustomerAccount, d time.Duration) (*domain.CreateSessionResult, error) {
	return f.svc.CreateSession(context.Background(), domain.CreateSessionRequest{
		Email:           email,
		AccountID:       account.ID.String(),
		ClientIP:        "203.0.113.7",
		ClientUserAgent: "portal-test",
		Duration:        d,
	})
}

func TestCreateSessionSecondCreateRejected(t *testing.T) {
	f := newFixture(t)
	acc1 := f.seedAccount(t, "Acme Primary", "a@x.com", accountdomain.StatusActive, true)
	acc2 := f.seedAccount(t, "Acme Sub", "a@x.com", accountdomain.StatusActive, false)

	result, err := f.create("a@x.com", acc2, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, result.RawToken)

	_, err = f.create("a@x.com", acc1, time.Hour)
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyActive)

	active, err := f.svc.HasActiveSession(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, active)
}

func TestCreateSessionConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t, "Acme", "race@x.com", accountdomain.StatusActive, true)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.create("race@x.com", account, time.Hour)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent create may win")

	var activeRows int64
	require.NoError(t, f.db.Model(&domain.CustomerSession{}).
		Where("email = ? AND is_active = ?", "race@x.com", true).
		Count(&activeRows).Error)
	assert.EqualValues(t, 1, activeRows)
}

func TestCreateSessionAccountPreconditions(t *testing.T) {
	f := newFixture(t)
	other := f.seedAccount(t, "Other Co", "b@x.com", accountdomain.StatusActive, true)
	inactive := f.seedAccount(t, "Dormant", "a@x.com", accountdomain.StatusInactive, true)

	_, err := f.create("a@x.com", other, time.Hour)
	assert.ErrorIs(t, err, domain.ErrAccountEmailMismatch)

	_, err = f.create("a@x.com", inactive, time.Hour)
	assert.ErrorIs(t, err, domain.ErrAccountInactive)

	_, err = f.svc.CreateSession(context.Background(), domain.CreateSessionRequest{
		Email:     "a@x.com",
		AccountID: f.node.Generate().String(),
		Duration:  time.Hour,
	})
	assert.ErrorIs(t, err, accountdomain.ErrNotFound)

	_, err = f.create("a@x.com", other, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestSwitchAccountSameEmailKeepsTokenAndExpiry(t *testing.T) {
	f := newFixture(t)
	acc1 := f.seedAccount(t, "Acme Primary", "a@x.com", accountdomain.StatusActive, true)
	acc2 := f.seedAccount(t, "Acme Sub", "a@x.com", accountdomain.StatusActive, false)

	result, err := f.create("a@x.com", acc2, time.Hour)
	require.NoError(t, err)

	switched, err := f.svc.SwitchAccount(context.Background(), result.RawToken, acc1.ID.String())
	require.NoError(t, err)
	assert.Equal(t, acc1.ID, switched.ID)

	session, account, err := f.svc.ValidateToken(context.Background(), result.RawToken)
	require.NoError(t, err)
	assert.Equal(t, acc1.ID, account.ID)
	assert.Equal(t, result.ExpiresAt, session.ExpiresAt)
	assert.Equal(t, result.SessionID, session.ID)
}

func TestSwitchAccountCrossEmailForbidden(t *testing.T) {
	f := newFixture(t)
	acc := f.seedAccount(t, "Acme", "a@x.com", accountdomain.StatusActive, true)
	foreign := f.seedAccount(t, "Other Co", "b@x.com", accountdomain.StatusActive, true)

	result, err := f.create("a@x.com", acc, time.Hour)
	require.NoError(t, err)

	_, err = f.svc.SwitchAccount(context.Background(), result.RawToken, foreign.ID.String())
	assert.ErrorIs(t, err, domain.ErrAccountEmailMismatch)

	// The session still points at the original account.
	_, account, err := f.svc.ValidateToken(context.Background(), result.RawToken)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, account.ID)
}

func TestEndSessionIdempotent(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t, "Acme", "a@x.com", accountdomain.StatusActive, true)

	result, err := f.create("a@x.com", account, time.Hour)
	require.NoError(t, err)

	require.NoError(t, f.svc.EndSession(context.Background(), result.RawToken))
	require.NoError(t, f.svc.EndSession(context.Background(), result.RawToken))

	_, _, err = f.svc.ValidateToken(context.Background(), result.RawToken)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	active, err := f.svc.HasActiveSession(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestExpiryIsEvaluatedAtReadTime(t *testing.T) {
	f := newFixture(t)
	account := f.seedAccount(t, "Acme", "a@x.com", accountdomain.StatusActive, true)

	result, err := f.create("a@x.com", account, time.Hour)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)

	_, _, err = f.svc.ValidateToken(context.Background(), result.RawToken)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)

	active, err := f.svc.HasActiveSession(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.False(t, active)

	// The row keeps is_active until explicitly ended.
	var session domain.CustomerSession
	require.NoError(t, f.db.Where("id = ?", result.SessionID).First(&session).Error)
	assert.True(t, session.IsActive)

	// An expired holder never blocks a fresh session.
	_, err = f.create("a@x.com", account, time.Hour)
	require.NoError(t, err)
}

func TestValidateUnknownToken(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.ValidateToken(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	err = f.svc.EndSession(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestTwoAccountScenario(t *testing.T) {
	f := newFixture(t)
	acc1 := f.seedAccount(t, "Acme Primary", "a@x.com", accountdomain.StatusActive, true)
	acc2 := f.seedAccount(t, "Acme Sub", "a@x.com", accountdomain.StatusActive, false)

	accounts, err := accountservice.New(accountservice.Params{
		Log:  zap.NewNop(),
		Repo: accountrepo.New(f.db),
	}).GetAccountsByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, acc1.ID, accounts[0].ID, "primary account surfaces first")

	result, err := f.create("a@x.com", acc2, time.Hour)
	require.NoError(t, err)

	_, err = f.create("a@x.com", acc1, time.Hour)
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyActive)

	switched, err := f.svc.SwitchAccount(context.Background(), result.RawToken, acc1.ID.String())
	require.NoError(t, err)
	assert.Equal(t, acc1.ID, switched.ID)

	_, account, err := f.svc.ValidateToken(context.Background(), result.RawToken)
	require.NoError(t, err)
	assert.Equal(t, acc1.ID, account.ID)
}
