package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/bullionbook/internal/customer/domain"
	"github.com/smallbiznis/bullionbook/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/bullionbook/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/bullionbook/internal/payment/domain"
	tradedomain "github.com/smallbiznis/bullionbook/internal/trade/domain"
	"github.com/smallbiznis/bullionbook/pkg/db"
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
	customers repository.Repository[customerdomain.Customer]
}

func Provide(p Params) domain.Repository {
	return &repo{
		customers: repository.New[customerdomain.Customer](p.DB, repository.Options{
			Entity:       "customer",
			NotFound:     customerdomain.ErrNotFound,
			AccessDenied: customerdomain.ErrAccessDenied,
			Log:          p.Log.Named("ledger.repository"),
			Recorder:     p.Metrics,
		}),
	}
}

// LockCustomer loads the customer row with FOR UPDATE on dialects that support it.
func (r *repo) LockCustomer(ctx context.Context, tx *gorm.DB, tenantID, customerID snowflake.ID) (*customerdomain.Customer, error) {
	return r.customers.WithTrx(tx).Get(ctx, tenantID, customerID, option.ForUpdate())
}

func (r *repo) WriteBalance(ctx context.Context, tx *gorm.DB, tenantID, customerID snowflake.ID, balance domain.Balance, now time.Time) error {
	res := tx.WithContext(ctx).
		Model(&customerdomain.Customer{}).
		Where("tenant_id = ? AND id = ?", tenantID, customerID).
		UpdateColumns(map[string]any{
			"closing_amount": balance.ClosingAmount,
			"closing_fine":   balance.ClosingFine,
			"updated_at":     now,
		})
	if res.Error != nil {
		return db.TranslateError(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return customerdomain.ErrNotFound
	}
	return nil
}

type postingRow struct {
	Amount          decimal.Decimal
	Fine            decimal.Decimal
	TransactionType string
}

// SumDeltas adds up the balance effect of every live record of the customer.
// Decimal arithmetic happens here rather than in SQL so every dialect agrees.
func (r *repo) SumDeltas(ctx context.Context, tx *gorm.DB, tenantID, customerID snowflake.ID) (domain.Delta, error) {
	total := domain.Delta{Amount: decimal.Zero, Fine: decimal.Zero}

	sources := []struct {
		model  any
		source domain.SourceType
	}{
		{&tradedomain.Sale{}, domain.SourceTypeSale},
		{&tradedomain.Purchase{}, domain.SourceTypePurchase},
	}
	for _, src := range sources {
		var rows []postingRow
		err := tx.WithContext(ctx).
			Model(src.model).
			Select("amount, fine").
			Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
			Scan(&rows).Error
		if err != nil {
			return domain.Delta{}, db.TranslateError(err, nil)
		}
		for _, row := range rows {
			d, err := domain.DeltaFor(src.source, domain.OperationCreate, row.Amount, row.Fine)
			if err != nil {
				return domain.Delta{}, err
			}
			total = total.Add(d)
		}
	}

	var payments []postingRow
	err := tx.WithContext(ctx).
		Model(&paymentdomain.Payment{}).
		Select("amount, fine, transaction_type").
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Scan(&payments).Error
	if err != nil {
		return domain.Delta{}, db.TranslateError(err, nil)
	}
	for _, row := range payments {
		d, err := domain.DeltaFor(domain.PaymentSource(paymentdomain.TransactionType(row.TransactionType)), domain.OperationCreate, row.Amount, row.Fine)
		if err != nil {
			return domain.Delta{}, err
		}
		total = total.Add(d)
	}
	return total, nil
}
