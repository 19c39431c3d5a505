package repository

import (
	obsmetrics "github.com/smallbiznis/bullionbook/internal/observability/metrics"
	"github.com/smallbiznis/bullionbook/internal/payment/domain"
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
	return repository.New[domain.Payment](p.DB, repository.Options{
		Entity:       "payment",
		NotFound:     domain.ErrNotFound,
		AccessDenied: domain.ErrAccessDenied,
		Conflict:     domain.ErrDuplicateInvoiceNumber,
		Log:          p.Log.Named("payment.repository"),
		Recorder:     p.Metrics,
	})
}
