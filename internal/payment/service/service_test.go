package service

import (
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bullionbook/internal/payment/domain"
	"github.com/smallbiznis/bullionbook/internal/payment/repository"
	"github.com/smallbiznis/bullionbook/internal/testutil"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const tenantA, tenantB snowflake.ID = 101, 202

func newService(t *testing.T) (domain.Service, *testutil.Stack) {
	t.Helper()
	stack := testutil.NewStack(t)
	svc := New(Params{
		Log:      zap.NewNop(),
		GenID:    stack.Node,
		Repo:     repository.Provide(repository.Params{DB: stack.DB, Log: zap.NewNop()}),
		Ledger:   stack.Ledger,
		Invoices: stack.Invoices,
		Identity: stack.Identity,
	})
	return svc, stack
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func cash(customerID snowflake.ID, tt domain.TransactionType, amount string) domain.CreatePaymentRequest {
	return domain.CreatePaymentRequest{
		Date:            "2024-05-01",
		CustomerID:      customerID.String(),
		TransactionType: tt,
		PaymentType:     domain.PaymentTypeCash,
		Amount:          dec(amount),
	}
}

func assertBalance(t *testing.T, stack *testutil.Stack, customerID snowflake.ID, amount, fine string) {
	t.Helper()
	gotAmount, gotFine := stack.Balance(t, customerID)
	assert.True(t, gotAmount.Equal(dec(amount)), "amount %s, want %s", gotAmount, amount)
	assert.True(t, gotFine.Equal(dec(fine)), "fine %s, want %s", gotFine, fine)
}

func TestReceiptRaisesAndPaymentLowersBalance(t *testing.T) {
	svc, stack := newService(t)
	ctx := testutil.Ctx(tenantA)

	r := stack.SeedCustomer(t, tenantA, "Receiver", "1500", "0")
	receipt, err := svc.Create(ctx, cash(r.ID, domain.TransactionTypeReceipt, "200"))
	require.NoError(t, err)
	assert.Equal(t, "PAY-002T-000001", receipt.InvoiceNo)
	assertBalance(t, stack, r.ID, "1700", "0")

	p := stack.SeedCustomer(t, tenantA, "Payee", "1500", "0")
	payment, err := svc.Create(ctx, cash(p.ID, domain.TransactionTypePayment, "200"))
	require.NoError(t, err)
	assert.Equal(t, "PAY-002T-000002", payment.InvoiceNo)
	assertBalance(t, stack, p.ID, "1300", "0")

	require.NoError(t, svc.Delete(ctx, payment.ID.String()))
	assertBalance(t, stack, p.ID, "1500", "0")
	require.NoError(t, svc.Delete(ctx, receipt.ID.String()))
	assertBalance(t, stack, r.ID, "1500", "0")
}

func TestFinePaymentDerivesFineAndRateCut(t *testing.T) {
	svc, stack := newService(t)
	c := stack.SeedCustomer(t, tenantA, "Ravi", "0", "50")

	req := domain.CreatePaymentRequest{
		Date:            "2024-05-01",
		CustomerID:      c.ID.String(),
		TransactionType: domain.TransactionTypePayment,
		PaymentType:     domain.PaymentTypeRateCutFine,
		Gross:           dec("20"),
		Purity:          dec("99.5"),
		Rate:            dec("60000"),
	}
	payment, err := svc.Create(testutil.Ctx(tenantA), req)
	require.NoError(t, err)
	assert.True(t, payment.Fine.Equal(dec("19.9")))
	assert.True(t, payment.RateCutFine.Equal(dec("1194")))
	assert.True(t, payment.Amount.IsZero())

	assertBalance(t, stack, c.ID, "0", "30.1")

	got, err := svc.GetByID(testutil.Ctx(tenantA), payment.ID.String())
	require.NoError(t, err)
	assert.True(t, got.RateCutFine.Equal(dec("1194")))
}

func TestConcurrentPaymentsConverge(t *testing.T) {
	svc, stack := newService(t)
	c := stack.SeedCustomer(t, tenantA, "Ravi", "1000", "0")
	ctx := testutil.Ctx(tenantA)

	var wg sync.WaitGroup
	for _, req := range []domain.CreatePaymentRequest{
		cash(c.ID, domain.TransactionTypeReceipt, "100"),
		cash(c.ID, domain.TransactionTypePayment, "40"),
	} {
		wg.Add(1)
		go func(req domain.CreatePaymentRequest) {
			defer wg.Done()
			_, err := svc.Create(ctx, req)
			assert.NoError(t, err)
		}(req)
	}
	wg.Wait()

	assertBalance(t, stack, c.ID, "1060", "0")
}

func TestPaymentTenantIsolation(t *testing.T) {
	svc, stack := newService(t)
	c := stack.SeedCustomer(t, tenantA, "Ravi", "0", "0")

	payment, err := svc.Create(testutil.Ctx(tenantA), cash(c.ID, domain.TransactionTypeReceipt, "10"))
	require.NoError(t, err)

	_, err = svc.GetByID(testutil.Ctx(tenantB), payment.ID.String())
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	assert.ErrorIs(t, svc.Delete(testutil.Ctx(tenantB), payment.ID.String()), apperror.ErrAccessDenied)
	assertBalance(t, stack, c.ID, "10", "0")
}

func TestPaymentValidationAndListing(t *testing.T) {
	svc, stack := newService(t)
	c := stack.SeedCustomer(t, tenantA, "Ravi", "0", "0")
	ctx := testutil.Ctx(tenantA)

	bad := cash(c.ID, domain.TransactionType("refund"), "10")
	_, err := svc.Create(ctx, bad)
	assert.Equal(t, "transaction_type", apperror.FieldOf(err))

	bad = cash(c.ID, domain.TransactionTypeReceipt, "10")
	bad.PaymentType = "cheque"
	_, err = svc.Create(ctx, bad)
	assert.Equal(t, "payment_type", apperror.FieldOf(err))

	_, err = svc.Create(ctx, cash(c.ID, domain.TransactionTypeReceipt, "10"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, cash(c.ID, domain.TransactionTypePayment, "5"))
	require.NoError(t, err)

	receipts, err := svc.List(ctx, domain.ListPaymentRequest{TransactionType: domain.TransactionTypeReceipt})
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, domain.TransactionTypeReceipt, receipts[0].TransactionType)

	_, err = svc.List(ctx, domain.ListPaymentRequest{TransactionType: "refund"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransactionType)

	all, err := svc.List(ctx, domain.ListPaymentRequest{CustomerID: c.ID.String()})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
