package customer

import (
	"github.com/smallbiznis/bullionbook/internal/customer/repository"
	"github.com/smallbiznis/bullionbook/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(repository.ProvideActivity),
	fx.Provide(service.New),
)
