// Package migration keeps the three tables this service owns in sync with
// their models at startup.
package migration

import (
	accountdomain "github.com/smallbiznis/portalauth/internal/account/domain"
	"github.com/smallbiznis/portalauth/internal/ratelimit"
	sessiondomain "github.com/smallbiznis/portalauth/internal/session/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Invoke(Run)

func Run(conn *gorm.DB, log *zap.Logger) error {
	err := conn.AutoMigrate(
		&accountdomain.CustomerAccount{},
		&sessiondomain.CustomerSession{},
		&ratelimit.RateLimitRecord{},
	)
	if err != nil {
		log.Error("migration failed", zap.Error(err))
		return err
	}
	return nil
}
