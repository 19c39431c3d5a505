package expense

import (
	"github.com/smallbiznis/bullionbook/internal/expense/repository"
	"github.com/smallbiznis/bullionbook/internal/expense/service"
	"go.uber.org/fx"
)

var Module = fx.Module("expense.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
