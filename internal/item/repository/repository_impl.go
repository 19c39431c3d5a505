package repository

import (
	"github.com/smallbiznis/bullionbook/internal/item/domain"
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
	return repository.New[domain.Item](p.DB, repository.Options{
		Entity:       "item",
		NotFound:     domain.ErrNotFound,
		AccessDenied: domain.ErrAccessDenied,
		Conflict:     domain.ErrCodeTaken,
		Log:          p.Log.Named("item.repository"),
		Recorder:     p.Metrics,
	})
}
