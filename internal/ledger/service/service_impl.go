package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/bullionbook/internal/customer/domain"
	"github.com/smallbiznis/bullionbook/internal/identity"
	ledgerdomain "github.com/smallbiznis/bullionbook/internal/ledger/domain"
	obslogger "github.com/smallbiznis/bullionbook/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/bullionbook/internal/observability/metrics"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"github.com/smallbiznis/bullionbook/pkg/rls"
	"github.com/smallbiznis/bullionbook/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Repo       ledgerdomain.Repository
	Locker     ledgerdomain.Locker
	Identity   identity.Resolver
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	repo       ledgerdomain.Repository
	locker     ledgerdomain.Locker
	identity   identity.Resolver
	obsMetrics *obsmetrics.Metrics
	now        func() time.Time
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("ledger.service"),
		repo:       p.Repo,
		locker:     p.Locker,
		identity:   p.Identity,
		obsMetrics: p.ObsMetrics,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Apply(ctx context.Context, tenantID, customerID snowflake.ID, m ledgerdomain.Mutation) (ledgerdomain.Balance, error) {
	if tenantID == 0 {
		return ledgerdomain.Balance{}, identity.ErrUnauthenticated
	}
	if m.Write == nil {
		return ledgerdomain.Balance{}, ledgerdomain.ErrMissingWrite
	}

	ctx, _ = correlation.EnsureCorrelationID(ctx)
	log := obslogger.WithContext(ctx, s.log).With(
		zap.String("source_type", string(m.Source)),
		zap.String("operation", string(m.Operation)),
		zap.String("customer_id", customerID.String()),
	)

	balance, err := s.applyLocked(ctx, tenantID, customerID, func(ctx context.Context, tx *gorm.DB, customer *customerdomain.Customer) (ledgerdomain.Balance, error) {
		delta, err := m.Write(ctx, tx)
		if err != nil {
			return ledgerdomain.Balance{}, err
		}
		return ledgerdomain.Balance{
			CustomerID:    customerID,
			ClosingAmount: customer.ClosingAmount.Add(delta.Amount),
			ClosingFine:   customer.ClosingFine.Add(delta.Fine),
		}, nil
	})
	if err != nil {
		s.obsMetrics.RecordLedgerFailure(ctx, string(m.Source), string(apperror.KindOf(err)))
		if apperror.KindOf(err) == apperror.KindPartialMutation {
			log.Error("ledger mutation outcome unknown, reconcile customer", zap.Error(err))
		} else {
			log.Debug("ledger mutation rolled back", zap.Error(err))
		}
		return ledgerdomain.Balance{}, err
	}

	s.obsMetrics.RecordLedgerMutation(ctx, string(m.Source), string(m.Operation))
	log.Info("ledger mutation applied",
		zap.String("closing_amount", balance.ClosingAmount.String()),
		zap.String("closing_fine", balance.ClosingFine.String()),
	)
	return balance, nil
}

func (s *Service) Reconcile(ctx context.Context, customerID snowflake.ID) (ledgerdomain.Reconciliation, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return ledgerdomain.Reconciliation{}, err
	}

	var result ledgerdomain.Reconciliation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.repo.LockCustomer(ctx, tx, tenantID, customerID)
		if err != nil {
			return err
		}
		sum, err := s.repo.SumDeltas(ctx, tx, tenantID, customerID)
		if err != nil {
			return err
		}
		result = reconcile(customer, sum)
		return nil
	})
	if err != nil {
		return ledgerdomain.Reconciliation{}, err
	}
	return result, nil
}

// Rebuild rewrites the closing balances to opening plus live deltas.
func (s *Service) Rebuild(ctx context.Context, customerID snowflake.ID) (ledgerdomain.Reconciliation, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return ledgerdomain.Reconciliation{}, err
	}

	var result ledgerdomain.Reconciliation
	_, err = s.applyLocked(ctx, tenantID, customerID, func(ctx context.Context, tx *gorm.DB, customer *customerdomain.Customer) (ledgerdomain.Balance, error) {
		sum, err := s.repo.SumDeltas(ctx, tx, tenantID, customerID)
		if err != nil {
			return ledgerdomain.Balance{}, err
		}
		result = reconcile(customer, sum)
		return ledgerdomain.Balance{
			CustomerID:    customerID,
			ClosingAmount: result.ExpectedAmount,
			ClosingFine:   result.ExpectedFine,
		}, nil
	})
	if err != nil {
		return ledgerdomain.Reconciliation{}, err
	}

	if !result.InSync {
		obslogger.WithContext(ctx, s.log).Warn("customer balance rebuilt",
			zap.String("customer_id", customerID.String()),
			zap.String("drift_amount", result.DriftAmount.String()),
			zap.String("drift_fine", result.DriftFine.String()),
		)
	}
	return result, nil
}

type balanceFunc func(ctx context.Context, tx *gorm.DB, customer *customerdomain.Customer) (ledgerdomain.Balance, error)

// applyLocked computes the next balance and writes it inside the customer's
// locked transaction.
func (s *Service) applyLocked(ctx context.Context, tenantID, customerID snowflake.ID, fn balanceFunc) (ledgerdomain.Balance, error) {
	var balance ledgerdomain.Balance
	err := s.inCustomerTx(ctx, tenantID, customerID, func(ctx context.Context, tx *gorm.DB, customer *customerdomain.Customer) error {
		next, err := fn(ctx, tx, customer)
		if err != nil {
			return err
		}
		if err := s.repo.WriteBalance(ctx, tx, tenantID, customerID, next, s.now()); err != nil {
			return err
		}
		balance = next
		return nil
	})
	if err != nil {
		return ledgerdomain.Balance{}, err
	}
	return balance, nil
}

func (s *Service) Locked(ctx context.Context, tenantID, customerID snowflake.ID, fn ledgerdomain.GuardFunc) error {
	if tenantID == 0 {
		return identity.ErrUnauthenticated
	}
	if fn == nil {
		return ledgerdomain.ErrMissingWrite
	}
	return s.inCustomerTx(ctx, tenantID, customerID, fn)
}

// inCustomerTx holds the customer lock for one transaction that locks the
// customer row and runs fn. A failed commit is reported as a partial mutation
// because the outcome cannot be known.
func (s *Service) inCustomerTx(ctx context.Context, tenantID, customerID snowflake.ID, fn ledgerdomain.GuardFunc) error {
	unlock, err := s.locker.Lock(ctx, lockKey(tenantID, customerID))
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, "ledger_lock_unavailable", err)
	}
	defer unlock()

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return apperror.Wrap(apperror.KindInternal, "ledger_begin_failed", tx.Error)
	}
	finished := false
	defer func() {
		if !finished {
			tx.Rollback()
		}
	}()

	if err := rls.WithTenant(tx, tenantID); err != nil {
		return apperror.Wrap(apperror.KindInternal, "ledger_tenant_scope_failed", err)
	}

	customer, err := s.repo.LockCustomer(ctx, tx, tenantID, customerID)
	if err != nil {
		return err
	}
	if err := fn(ctx, tx, customer); err != nil {
		return err
	}

	finished = true
	if err := tx.Commit().Error; err != nil {
		return apperror.Wrap(apperror.KindPartialMutation, ledgerdomain.ErrCommitUncertain.Code, err)
	}
	return nil
}

func reconcile(customer *customerdomain.Customer, sum ledgerdomain.Delta) ledgerdomain.Reconciliation {
	expectedAmount := customer.OpeningAmount.Add(sum.Amount)
	expectedFine := customer.OpeningFine.Add(sum.Fine)
	driftAmount := customer.ClosingAmount.Sub(expectedAmount)
	driftFine := customer.ClosingFine.Sub(expectedFine)
	return ledgerdomain.Reconciliation{
		CustomerID:     customer.ID,
		OpeningAmount:  customer.OpeningAmount,
		OpeningFine:    customer.OpeningFine,
		RecordedAmount: customer.ClosingAmount,
		RecordedFine:   customer.ClosingFine,
		ExpectedAmount: expectedAmount,
		ExpectedFine:   expectedFine,
		DriftAmount:    driftAmount,
		DriftFine:      driftFine,
		InSync:         driftAmount.IsZero() && driftFine.IsZero(),
	}
}

func lockKey(tenantID, customerID snowflake.ID) string {
	return fmt.Sprintf("%d:%d", tenantID, customerID)
}
