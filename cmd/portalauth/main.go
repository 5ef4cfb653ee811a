package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/portalauth/internal/account"
	"github.com/smallbiznis/portalauth/internal/clock"
	"github.com/smallbiznis/portalauth/internal/config"
	"github.com/smallbiznis/portalauth/internal/metrics"
	"github.com/smallbiznis/portalauth/internal/migration"
	"github.com/smallbiznis/portalauth/internal/ratelimit"
	"github.com/smallbiznis/portalauth/internal/server"
	"github.com/smallbiznis/portalauth/internal/session"
	"github.com/smallbiznis/portalauth/pkg/db"
	"github.com/smallbiznis/portalauth/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,
		migration.Module,

		account.Module,
		session.Module,
		ratelimit.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
