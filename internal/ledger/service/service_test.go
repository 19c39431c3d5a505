package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/bullionbook/internal/customer/domain"
	ledgerdomain "github.com/smallbiznis/bullionbook/internal/ledger/domain"
	"github.com/smallbiznis/bullionbook/internal/ledger/lock"
	ledgerrepo "github.com/smallbiznis/bullionbook/internal/ledger/repository"
	ledgersvc "github.com/smallbiznis/bullionbook/internal/ledger/service"
	"github.com/smallbiznis/bullionbook/internal/testutil"
	tradedomain "github.com/smallbiznis/bullionbook/internal/trade/domain"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const tenantA, tenantB snowflake.ID = 101, 202

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func insertSale(stack *testutil.Stack, customerID snowflake.ID, invoice string, amount, fine decimal.Decimal) ledgerdomain.Mutation {
	return ledgerdomain.Mutation{
		Source:    ledgerdomain.SourceTypeSale,
		Operation: ledgerdomain.OperationCreate,
		Write: func(ctx context.Context, tx *gorm.DB) (ledgerdomain.Delta, error) {
			sale := tradedomain.Sale{Trade: tradedomain.Trade{
				ID:         stack.Node.Generate(),
				TenantID:   tenantA,
				InvoiceNo:  invoice,
				Date:       datatypes.Date(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
				CustomerID: customerID,
				ItemName:   "chain",
				Amount:     amount,
				Fine:       fine,
			}}
			if err := tx.Create(&sale).Error; err != nil {
				return ledgerdomain.Delta{}, err
			}
			return ledgerdomain.DeltaFor(ledgerdomain.SourceTypeSale, ledgerdomain.OperationCreate, amount, fine)
		},
	}
}

func TestApplyWritesRecordAndBalance(t *testing.T) {
	stack := testutil.NewStack(t)
	customer := stack.SeedCustomer(t, tenantA, "Ravi", "1000", "10")

	balance, err := stack.Ledger.Apply(testutil.Ctx(tenantA), tenantA, customer.ID, insertSale(stack, customer.ID, "S-1", dec("500"), dec("30.15")))
	require.NoError(t, err)
	assert.True(t, balance.ClosingAmount.Equal(dec("1500")))
	assert.True(t, balance.ClosingFine.Equal(dec("40.15")))

	amount, fine := stack.Balance(t, customer.ID)
	assert.True(t, amount.Equal(dec("1500")), amount.String())
	assert.True(t, fine.Equal(dec("40.15")), fine.String())

	var count int64
	require.NoError(t, stack.DB.Model(&tradedomain.Sale{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestApplyRollsBackRecordWhenWriteFails(t *testing.T) {
	stack := testutil.NewStack(t)
	customer := stack.SeedCustomer(t, tenantA, "Ravi", "1000", "10")
	boom := errors.New("boom")

	m := insertSale(stack, customer.ID, "S-1", dec("500"), dec("30.15"))
	inner := m.Write
	m.Write = func(ctx context.Context, tx *gorm.DB) (ledgerdomain.Delta, error) {
		if _, err := inner(ctx, tx); err != nil {
			return ledgerdomain.Delta{}, err
		}
		return ledgerdomain.Delta{}, boom
	}

	_, err := stack.Ledger.Apply(testutil.Ctx(tenantA), tenantA, customer.ID, m)
	require.ErrorIs(t, err, boom)

	amount, fine := stack.Balance(t, customer.ID)
	assert.True(t, amount.Equal(dec("1000")))
	assert.True(t, fine.Equal(dec("10")))
	var count int64
	require.NoError(t, stack.DB.Model(&tradedomain.Sale{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestApplyRejectsForeignAndMissingCustomer(t *testing.T) {
	stack := testutil.NewStack(t)
	foreign := stack.SeedCustomer(t, tenantB, "Other", "0", "0")

	_, err := stack.Ledger.Apply(testutil.Ctx(tenantA), tenantA, foreign.ID, insertSale(stack, foreign.ID, "S-1", dec("1"), dec("1")))
	assert.ErrorIs(t, err, apperror.ErrAccessDenied)
	assert.ErrorIs(t, err, customerdomain.ErrAccessDenied)

	_, err = stack.Ledger.Apply(testutil.Ctx(tenantA), tenantA, stack.Node.Generate(), insertSale(stack, 1, "S-2", dec("1"), dec("1")))
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	amount, _ := stack.Balance(t, foreign.ID)
	assert.True(t, amount.IsZero())
}

func TestApplyRequiresTenantAndWrite(t *testing.T) {
	stack := testutil.NewStack(t)
	customer := stack.SeedCustomer(t, tenantA, "Ravi", "0", "0")

	_, err := stack.Ledger.Apply(context.Background(), 0, customer.ID, insertSale(stack, customer.ID, "S-1", dec("1"), dec("1")))
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = stack.Ledger.Apply(testutil.Ctx(tenantA), tenantA, customer.ID, ledgerdomain.Mutation{Source: ledgerdomain.SourceTypeSale})
	assert.ErrorIs(t, err, ledgerdomain.ErrMissingWrite)
}

func TestReconcileAndRebuild(t *testing.T) {
	stack := testutil.NewStack(t)
	customer := stack.SeedCustomer(t, tenantA, "Ravi", "1000", "10")
	ctx := testutil.Ctx(tenantA)

	_, err := stack.Ledger.Apply(ctx, tenantA, customer.ID, insertSale(stack, customer.ID, "S-1", dec("500"), dec("30.15")))
	require.NoError(t, err)

	rec, err := stack.Ledger.Reconcile(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, rec.InSync)

	require.NoError(t, stack.DB.Model(&customerdomain.Customer{}).
		Where("id = ?", customer.ID).
		UpdateColumn("closing_amount", dec("9999")).Error)

	rec, err = stack.Ledger.Reconcile(ctx, customer.ID)
	require.NoError(t, err)
	assert.False(t, rec.InSync)
	assert.True(t, rec.DriftAmount.Equal(dec("8499")), rec.DriftAmount.String())
	assert.True(t, rec.DriftFine.IsZero())

	rec, err = stack.Ledger.Rebuild(ctx, customer.ID)
	require.NoError(t, err)
	assert.False(t, rec.InSync)

	amount, fine := stack.Balance(t, customer.ID)
	assert.True(t, amount.Equal(dec("1500")), amount.String())
	assert.True(t, fine.Equal(dec("40.15")), fine.String())

	rec, err = stack.Ledger.Reconcile(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, rec.InSync)
}

func TestReconcileForeignCustomer(t *testing.T) {
	stack := testutil.NewStack(t)
	foreign := stack.SeedCustomer(t, tenantB, "Other", "0", "0")

	_, err := stack.Ledger.Reconcile(testutil.Ctx(tenantA), foreign.ID)
	assert.ErrorIs(t, err, apperror.ErrAccessDenied)

	_, err = stack.Ledger.Rebuild(context.Background(), foreign.ID)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

// faultyRepo wraps the real repository and swaps in writeBalance when set.
type faultyRepo struct {
	ledgerdomain.Repository
	writeBalance func(ctx context.Context, tx *gorm.DB) error
}

func (r faultyRepo) WriteBalance(ctx context.Context, tx *gorm.DB, tenantID, customerID snowflake.ID, balance ledgerdomain.Balance, now time.Time) error {
	if r.writeBalance != nil {
		return r.writeBalance(ctx, tx)
	}
	return r.Repository.WriteBalance(ctx, tx, tenantID, customerID, balance, now)
}

func ledgerWith(stack *testutil.Stack, writeBalance func(ctx context.Context, tx *gorm.DB) error) ledgerdomain.Service {
	return ledgersvc.NewService(ledgersvc.Params{
		DB:  stack.DB,
		Log: zap.NewNop(),
		Repo: faultyRepo{
			Repository:   ledgerrepo.Provide(ledgerrepo.Params{DB: stack.DB, Log: zap.NewNop()}),
			writeBalance: writeBalance,
		},
		Locker:   lock.NewLocal(),
		Identity: stack.Identity,
	})
}

func TestApplyRollsBackRecordWhenBalanceWriteFails(t *testing.T) {
	stack := testutil.NewStack(t)
	customer := stack.SeedCustomer(t, tenantA, "Ravi", "1000", "10")
	boom := errors.New("balance row unavailable")
	ledger := ledgerWith(stack, func(context.Context, *gorm.DB) error { return boom })

	_, err := ledger.Apply(testutil.Ctx(tenantA), tenantA, customer.ID, insertSale(stack, customer.ID, "S-1", dec("500"), dec("30.15")))
	require.ErrorIs(t, err, boom)
	assert.NotEqual(t, apperror.KindPartialMutation, apperror.KindOf(err))

	amount, fine := stack.Balance(t, customer.ID)
	assert.True(t, amount.Equal(dec("1000")), amount.String())
	assert.True(t, fine.Equal(dec("10")), fine.String())
	var count int64
	require.NoError(t, stack.DB.Model(&tradedomain.Sale{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestApplyReportsPartialMutationWhenCommitFails(t *testing.T) {
	stack := testutil.NewStack(t)
	customer := stack.SeedCustomer(t, tenantA, "Ravi", "1000", "10")
	ctx := testutil.Ctx(tenantA)
	// Ending the transaction early makes the final commit fail after the
	// record has already been persisted.
	ledger := ledgerWith(stack, func(_ context.Context, tx *gorm.DB) error {
		return tx.Commit().Error
	})

	_, err := ledger.Apply(ctx, tenantA, customer.ID, insertSale(stack, customer.ID, "S-1", dec("500"), dec("30.15")))
	require.Error(t, err)
	assert.Equal(t, apperror.KindPartialMutation, apperror.KindOf(err))

	var count int64
	require.NoError(t, stack.DB.Model(&tradedomain.Sale{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	rec, err := stack.Ledger.Reconcile(ctx, customer.ID)
	require.NoError(t, err)
	assert.False(t, rec.InSync)
	assert.True(t, rec.DriftAmount.Equal(dec("-500")), rec.DriftAmount.String())

	_, err = stack.Ledger.Rebuild(ctx, customer.ID)
	require.NoError(t, err)
	amount, fine := stack.Balance(t, customer.ID)
	assert.True(t, amount.Equal(dec("1500")), amount.String())
	assert.True(t, fine.Equal(dec("40.15")), fine.String())
}

func TestLockedRollsBackOnError(t *testing.T) {
	stack := testutil.NewStack(t)
	customer := stack.SeedCustomer(t, tenantA, "Ravi", "1000", "10")
	ctx := testutil.Ctx(tenantA)
	boom := errors.New("boom")

	err := stack.Ledger.Locked(ctx, tenantA, customer.ID, func(ctx context.Context, tx *gorm.DB, c *customerdomain.Customer) error {
		assert.Equal(t, customer.ID, c.ID)
		if err := tx.Delete(&customerdomain.Customer{}, "id = ?", c.ID).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	amount, _ := stack.Balance(t, customer.ID)
	assert.True(t, amount.Equal(dec("1000")))

	assert.ErrorIs(t, stack.Ledger.Locked(context.Background(), 0, customer.ID, func(context.Context, *gorm.DB, *customerdomain.Customer) error { return nil }), apperror.ErrUnauthenticated)
	assert.ErrorIs(t, stack.Ledger.Locked(ctx, tenantA, customer.ID, nil), ledgerdomain.ErrMissingWrite)
}
