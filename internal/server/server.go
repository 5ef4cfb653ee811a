package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	accountdomain "github.com/smallbiznis/portalauth/internal/account/domain"
	"github.com/smallbiznis/portalauth/internal/config"
	"github.com/smallbiznis/portalauth/internal/metrics"
	"github.com/smallbiznis/portalauth/internal/ratelimit"
	"github.com/smallbiznis/portalauth/internal/session/cookie"
	sessiondomain "github.com/smallbiznis/portalauth/internal/session/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(cookie.NewManager),
	fx.Provide(NewServer),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(Run),
)

// Server holds the handler dependencies for the session core API.
type Server struct {
	cfg      config.Config
	log      *zap.Logger
	accounts accountdomain.Service
	sessions sessiondomain.Service
	cookies  *cookie.Manager
	limiter  *ratelimit.Limiter
	metrics  *metrics.Metrics
}

type Params struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Accounts accountdomain.Service
	Sessions sessiondomain.Service
	Cookies  *cookie.Manager
	Limiter  *ratelimit.Limiter
	Metrics  *metrics.Metrics
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:      p.Config,
		log:      p.Log.Named("server"),
		accounts: p.Accounts,
		sessions: p.Sessions,
		cookies:  p.Cookies,
		limiter:  p.Limiter,
		metrics:  p.Metrics,
	}
}

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogging())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func RegisterRoutes(r *gin.Engine, s *Server) {
	limits := s.cfg.RateLimit

	v1 := r.Group("/v1")

	v1.GET("/accounts",
		s.RateLimit(opAccountLookup, ratelimit.Policy{
			MaxRequests: limits.AccountLookupMax,
			Window:      limits.AccountLookupWindow,
		}),
		s.ListAccounts,
	)

	sessions := v1.Group("/sessions")
	sessions.GET("/active", s.HasActiveSession)
	sessions.POST("",
		s.RateLimit(opSessionCreate, ratelimit.Policy{
			MaxRequests: limits.SessionCreateMax,
			Window:      limits.SessionCreateWindow,
		}),
		s.CreateSession,
	)
	sessions.POST("/switch", s.SwitchAccount)
	sessions.DELETE("", s.EndSession)
	sessions.GET("/me", s.CurrentSession)
}

// Run starts the HTTP server on the fx lifecycle.
func Run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
