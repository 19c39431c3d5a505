package invoiceno

import (
	"github.com/smallbiznis/bullionbook/internal/invoiceno/repository"
	"github.com/smallbiznis/bullionbook/internal/invoiceno/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoiceno.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
