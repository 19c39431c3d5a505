package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bullionbook/internal/customer/domain"
	obsmetrics "github.com/smallbiznis/bullionbook/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/bullionbook/internal/payment/domain"
	tradedomain "github.com/smallbiznis/bullionbook/internal/trade/domain"
	"github.com/smallbiznis/bullionbook/pkg/db/option"
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
	return repository.New[domain.Customer](p.DB, repository.Options{
		Entity:       "customer",
		NotFound:     domain.ErrNotFound,
		AccessDenied: domain.ErrAccessDenied,
		Log:          p.Log.Named("customer.repository"),
		Recorder:     p.Metrics,
	})
}

type activity struct {
	sales     repository.Repository[tradedomain.Sale]
	purchases repository.Repository[tradedomain.Purchase]
	payments  repository.Repository[paymentdomain.Payment]
}

func ProvideActivity(p Params) domain.Activity {
	opts := func(entity string) repository.Options {
		return repository.Options{Entity: entity, Log: p.Log.Named("customer.activity"), Recorder: p.Metrics}
	}
	return &activity{
		sales:     repository.New[tradedomain.Sale](p.DB, opts("sale")),
		purchases: repository.New[tradedomain.Purchase](p.DB, opts("purchase")),
		payments:  repository.New[paymentdomain.Payment](p.DB, opts("payment")),
	}
}

func (a *activity) WithTrx(tx *gorm.DB) domain.Activity {
	return &activity{
		sales:     a.sales.WithTrx(tx),
		purchases: a.purchases.WithTrx(tx),
		payments:  a.payments.WithTrx(tx),
	}
}

func (a *activity) CountReferences(ctx context.Context, tenantID, customerID snowflake.ID) (int64, error) {
	var total int64
	for _, count := range []func(context.Context, snowflake.ID, ...option.QueryOption) (int64, error){
		a.sales.Count,
		a.purchases.Count,
		a.payments.Count,
	} {
		n, err := count(ctx, tenantID, option.CustomerID(int64(customerID)))
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (a *activity) Sales(ctx context.Context, tenantID, customerID snowflake.ID, from, to time.Time) ([]tradedomain.Sale, error) {
	rows, err := a.sales.List(ctx, tenantID, customerScope(customerID, from, to)...)
	return deref(rows), err
}

func (a *activity) Purchases(ctx context.Context, tenantID, customerID snowflake.ID, from, to time.Time) ([]tradedomain.Purchase, error) {
	rows, err := a.purchases.List(ctx, tenantID, customerScope(customerID, from, to)...)
	return deref(rows), err
}

func (a *activity) Payments(ctx context.Context, tenantID, customerID snowflake.ID, from, to time.Time) ([]paymentdomain.Payment, error) {
	rows, err := a.payments.List(ctx, tenantID, customerScope(customerID, from, to)...)
	return deref(rows), err
}

func customerScope(customerID snowflake.ID, from, to time.Time) []option.QueryOption {
	return []option.QueryOption{
		option.CustomerID(int64(customerID)),
		option.DateRange(from, to),
		option.OrderByDateDesc(),
	}
}

func deref[T any](rows []*T) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			out = append(out, *row)
		}
	}
	return out
}
