package ledger

import (
	"github.com/smallbiznis/bullionbook/internal/ledger/lock"
	"github.com/smallbiznis/bullionbook/internal/ledger/repository"
	"github.com/smallbiznis/bullionbook/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(lock.Provide),
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
