package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bullionbook/internal/analytics/domain"
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

type repo struct {
	sales     repository.Repository[tradedomain.Sale]
	purchases repository.Repository[tradedomain.Purchase]
	payments  repository.Repository[paymentdomain.Payment]
}

func Provide(p Params) domain.Repository {
	log := p.Log.Named("analytics.repository")
	return &repo{
		sales:     repository.New[tradedomain.Sale](p.DB, repository.Options{Entity: "sale", Log: log, Recorder: p.Metrics}),
		purchases: repository.New[tradedomain.Purchase](p.DB, repository.Options{Entity: "purchase", Log: log, Recorder: p.Metrics}),
		payments:  repository.New[paymentdomain.Payment](p.DB, repository.Options{Entity: "payment", Log: log, Recorder: p.Metrics}),
	}
}

func (r *repo) Trades(ctx context.Context, tenantID snowflake.ID, kind tradedomain.Kind, from, to time.Time) ([]tradedomain.Trade, error) {
	opts := []option.QueryOption{option.DateRange(from, to), option.OrderBy("date asc, created_at asc")}
	switch kind {
	case tradedomain.KindSale:
		rows, err := r.sales.List(ctx, tenantID, opts...)
		if err != nil {
			return nil, err
		}
		out := make([]tradedomain.Trade, 0, len(rows))
		for _, row := range rows {
			out = append(out, row.Trade)
		}
		return out, nil
	case tradedomain.KindPurchase:
		rows, err := r.purchases.List(ctx, tenantID, opts...)
		if err != nil {
			return nil, err
		}
		out := make([]tradedomain.Trade, 0, len(rows))
		for _, row := range rows {
			out = append(out, row.Trade)
		}
		return out, nil
	default:
		return nil, domain.ErrInvalidKind
	}
}

func (r *repo) Payments(ctx context.Context, tenantID snowflake.ID, from, to time.Time) ([]paymentdomain.Payment, error) {
	rows, err := r.payments.List(ctx, tenantID, option.DateRange(from, to), option.OrderBy("date asc, created_at asc"))
	if err != nil {
		return nil, err
	}
	out := make([]paymentdomain.Payment, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}
