package trade

import (
	"github.com/smallbiznis/bullionbook/internal/trade/repository"
	"github.com/smallbiznis/bullionbook/internal/trade/service"
	"go.uber.org/fx"
)

var Module = fx.Module("trade.service",
	fx.Provide(repository.ProvideSales),
	fx.Provide(repository.ProvidePurchases),
	fx.Provide(service.New),
)
