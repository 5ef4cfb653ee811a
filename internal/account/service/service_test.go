package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/portalauth/internal/account/domain"
	"github.com/smallbiznis/portalauth/internal/account/repository"
	"github.com/smallbiznis/portalauth/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.CustomerAccount{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		Log:  zap.NewNop(),
		Repo: repository.New(conn),
	})
	return svc, conn, node
}

func seedAccount(t *testing.T, conn *gorm.DB, node *snowflake.Node, name, email string, primary bool) domain.CustomerAccount {
	t.Helper()

	account := domain.CustomerAccount{
		ID:               node.Generate(),
		CustomerName:     name,
		Email:            email,
		IsPrimaryAccount: primary,
		AccountStatus:    domain.StatusActive,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	require.NoError(t, conn.Create(&account).Error)
	return account
}

func TestGetAccountsByEmailOrdering(t *testing.T) {
	svc, conn, node := newTestService(t)

	sub2 := seedAccount(t, conn, node, "Zenith Site", "ops@acme.test", false)
	primary := seedAccount(t, conn, node, "Acme Holdings", "ops@acme.test", true)
	sub1 := seedAccount(t, conn, node, "Acme Depot", "ops@acme.test", false)
	seedAccount(t, conn, node, "Unrelated Co", "other@acme.test", true)

	accounts, err := svc.GetAccountsByEmail(context.Background(), "ops@acme.test")
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	assert.Equal(t, primary.ID, accounts[0].ID)
	assert.Equal(t, sub1.ID, accounts[1].ID)
	assert.Equal(t, sub2.ID, accounts[2].ID)
}

func TestGetAccountsByEmailNormalizesInput(t *testing.T) {
	svc, conn, node := newTestService(t)
	account := seedAccount(t, conn, node, "Acme", "ops@acme.test", true)

	accounts, err := svc.GetAccountsByEmail(context.Background(), "  ops@ACME.test ")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, account.ID, accounts[0].ID)
}

func TestGetAccountsByEmailNoMatches(t *testing.T) {
	svc, _, _ := newTestService(t)

	accounts, err := svc.GetAccountsByEmail(context.Background(), "ghost@acme.test")
	require.NoError(t, err)
	assert.Empty(t, accounts)

	accounts, err = svc.GetAccountsByEmail(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestGetByID(t *testing.T) {
	svc, conn, node := newTestService(t)
	account := seedAccount(t, conn, node, "Acme", "ops@acme.test", true)

	found, err := svc.GetByID(context.Background(), account.ID.String())
	require.NoError(t, err)
	assert.Equal(t, account.CustomerName, found.CustomerName)

	_, err = svc.GetByID(context.Background(), node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByID(context.Background(), "not-a-snowflake")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
