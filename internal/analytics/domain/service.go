package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	paymentdomain "github.com/smallbiznis/bullionbook/internal/payment/domain"
	tradedomain "github.com/smallbiznis/bullionbook/internal/trade/domain"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
)

// Repository reads transaction records for aggregation. A zero bound is open.
type Repository interface {
	Trades(ctx context.Context, tenantID snowflake.ID, kind tradedomain.Kind, from, to time.Time) ([]tradedomain.Trade, error)
	Payments(ctx context.Context, tenantID snowflake.ID, from, to time.Time) ([]paymentdomain.Payment, error)
}

type Service interface {
	DailySummary(ctx context.Context, kind tradedomain.Kind, date time.Time) (DailySummary, error)
	DashboardSummary(ctx context.Context) (DashboardSummary, error)
	MonthlyTrends(ctx context.Context, months int) ([]MonthlyTrend, error)
	DayBook(ctx context.Context, date time.Time) (DayBook, error)
}

const (
	DefaultTrendMonths = 6
	MaxTrendMonths     = 120
)

var (
	ErrInvalidKind   = apperror.Validation("kind", "invalid_kind")
	ErrInvalidMonths = apperror.Validation("months", "invalid_months")
)
