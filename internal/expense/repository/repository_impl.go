package repository

import (
	"github.com/smallbiznis/bullionbook/internal/expense/domain"
	obsmetrics "github.com/smallbiznis/bullionbook/internal/observability/metrics"
	"github.com/smallbiznis/bullionbook/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Metrics *obsmetrics.Metrics `optional:"true"`
}

func Provide(p Params) domain.Repository {
	return repository.New[domain.Expense](p.DB, repository.Options{
		Entity:       "expense",
		NotFound:     domain.ErrNotFound,
		AccessDenied: domain.ErrAccessDenied,
		Log:          p.Log.Named("expense.repository"),
		Recorder:     p.Metrics,
	})
}
