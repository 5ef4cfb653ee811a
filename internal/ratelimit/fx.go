package ratelimit

import (
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/portalauth/internal/clock"
	"github.com/smallbiznis/portalauth/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("rate.limit",
	fx.Provide(NewFromConfig),
)

// NewFromConfig wires the limiter against Redis when an address is
// configured, and against the relational store otherwise. A disabled
// limiter allows everything.
func NewFromConfig(cfg config.Config, log *zap.Logger, clk clock.Clock, conn *gorm.DB) *Limiter {
	if !cfg.RateLimit.Enabled {
		return NewLimiter(log, clk, nil)
	}

	addr := strings.TrimSpace(cfg.RateLimit.RedisAddr)
	if addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.RateLimit.RedisPassword,
			DB:       cfg.RateLimit.RedisDB,
		})
		return NewLimiter(log, clk, NewRedisStore(client))
	}

	return NewLimiter(log, clk, NewGormStore(conn))
}
