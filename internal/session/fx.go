package session

import (
	"github.com/smallbiznis/portalauth/internal/session/repository"
	"github.com/smallbiznis/portalauth/internal/session/service"
	"go.uber.org/fx"
)

var Module = fx.Module("session.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
