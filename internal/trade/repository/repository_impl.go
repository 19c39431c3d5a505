package repository

import (
	obsmetrics "github.com/smallbiznis/bullionbook/internal/observability/metrics"
	"github.com/smallbiznis/bullionbook/internal/trade/domain"
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

func ProvideSales(p Params) domain.SaleRepository {
	return repository.New[domain.Sale](p.DB, repository.Options{
		Entity:       "sale",
		NotFound:     domain.ErrSaleNotFound,
		AccessDenied: domain.ErrSaleAccessDenied,
		Conflict:     domain.ErrDuplicateInvoiceNumber,
		Log:          p.Log.Named("sale.repository"),
		Recorder:     p.Metrics,
	})
}

func ProvidePurchases(p Params) domain.PurchaseRepository {
	return repository.New[domain.Purchase](p.DB, repository.Options{
		Entity:       "purchase",
		NotFound:     domain.ErrPurchaseNotFound,
		AccessDenied: domain.ErrPurchaseAccessDenied,
		Conflict:     domain.ErrDuplicateInvoiceNumber,
		Log:          p.Log.Named("purchase.repository"),
		Recorder:     p.Metrics,
	})
}
