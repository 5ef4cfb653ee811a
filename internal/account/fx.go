package account

import (
	"github.com/smallbiznis/portalauth/internal/account/repository"
	"github.com/smallbiznis/portalauth/internal/account/service"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
