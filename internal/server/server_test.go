package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	analyticsrepo "github.com/smallbiznis/bullionbook/internal/analytics/repository"
	analyticssvc "github.com/smallbiznis/bullionbook/internal/analytics/service"
	"github.com/smallbiznis/bullionbook/internal/clock"
	companyrepo "github.com/smallbiznis/bullionbook/internal/company/repository"
	companysvc "github.com/smallbiznis/bullionbook/internal/company/service"
	"github.com/smallbiznis/bullionbook/internal/config"
	customerdomain "github.com/smallbiznis/bullionbook/internal/customer/domain"
	customerrepo "github.com/smallbiznis/bullionbook/internal/customer/repository"
	customersvc "github.com/smallbiznis/bullionbook/internal/customer/service"
	expenserepo "github.com/smallbiznis/bullionbook/internal/expense/repository"
	expensesvc "github.com/smallbiznis/bullionbook/internal/expense/service"
	"github.com/smallbiznis/bullionbook/internal/identity"
	itemrepo "github.com/smallbiznis/bullionbook/internal/item/repository"
	itemsvc "github.com/smallbiznis/bullionbook/internal/item/service"
	ledgerdomain "github.com/smallbiznis/bullionbook/internal/ledger/domain"
	"github.com/smallbiznis/bullionbook/internal/observability"
	paymentrepo "github.com/smallbiznis/bullionbook/internal/payment/repository"
	paymentsvc "github.com/smallbiznis/bullionbook/internal/payment/service"
	"github.com/smallbiznis/bullionbook/internal/ratelimit"
	tradedomain "github.com/smallbiznis/bullionbook/internal/trade/domain"
	traderepo "github.com/smallbiznis/bullionbook/internal/trade/repository"
	tradesvc "github.com/smallbiznis/bullionbook/internal/trade/service"
	"github.com/smallbiznis/bullionbook/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	tenantA = snowflake.ID(101)
	tenantB = snowflake.ID(202)
)

type harness struct {
	t      *testing.T
	server *Server
	stack  *testutil.Stack
}

func newHarness(t *testing.T, environment string) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stack := testutil.NewStack(t)
	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	cfg := config.Config{Environment: environment, AuthJWTSecret: "server-test-secret"}

	customerParams := customerrepo.Params{DB: stack.DB, Log: log}
	tradeParams := traderepo.Params{DB: stack.DB, Log: log}

	srv := NewServer(ServerParams{
		Gin:    NewEngine(observability.Config{}, nil),
		Cfg:    cfg,
		Tokens: identity.NewTokenIssuer(cfg),
		Clock:  clk,
		CustomerSvc: customersvc.New(customersvc.Params{
			Log:      log,
			GenID:    stack.Node,
			Repo:     customerrepo.Provide(customerParams),
			Activity: customerrepo.ProvideActivity(customerParams),
			Ledger:   stack.Ledger,
			Identity: stack.Identity,
		}),
		ItemSvc: itemsvc.New(itemsvc.Params{
			Log:      log,
			GenID:    stack.Node,
			Repo:     itemrepo.Provide(itemrepo.Params{DB: stack.DB, Log: log}),
			Identity: stack.Identity,
		}),
		TradeSvc: tradesvc.New(tradesvc.Params{
			Log:       log,
			GenID:     stack.Node,
			Sales:     traderepo.ProvideSales(tradeParams),
			Purchases: traderepo.ProvidePurchases(tradeParams),
			Ledger:    stack.Ledger,
			Invoices:  stack.Invoices,
			Identity:  stack.Identity,
		}),
		PaymentSvc: paymentsvc.New(paymentsvc.Params{
			Log:      log,
			GenID:    stack.Node,
			Repo:     paymentrepo.Provide(paymentrepo.Params{DB: stack.DB, Log: log}),
			Ledger:   stack.Ledger,
			Invoices: stack.Invoices,
			Identity: stack.Identity,
		}),
		ExpenseSvc: expensesvc.New(expensesvc.Params{
			Log:      log,
			GenID:    stack.Node,
			Repo:     expenserepo.Provide(expenserepo.Params{DB: stack.DB, Log: log}),
			Identity: stack.Identity,
		}),
		CompanySvc: companysvc.New(companysvc.Params{
			Log:      log,
			GenID:    stack.Node,
			Repo:     companyrepo.Provide(companyrepo.Params{DB: stack.DB, Log: log}),
			Identity: stack.Identity,
		}),
		LedgerSvc: stack.Ledger,
		AnalyticsSvc: analyticssvc.New(analyticssvc.Params{
			Log:      log,
			Repo:     analyticsrepo.Provide(analyticsrepo.Params{DB: stack.DB, Log: log}),
			Clock:    clk,
			Identity: stack.Identity,
		}),
	})

	return &harness{t: t, server: srv, stack: stack}
}

func (h *harness) token(tenantID snowflake.ID) string {
	h.t.Helper()
	token, err := h.server.tokens.Issue(tenantID, time.Hour)
	require.NoError(h.t, err)
	return token
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.server.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Error
}

func TestHealthIsPublic(t *testing.T) {
	h := newHarness(t, "test")
	rec := h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresBearerToken(t *testing.T) {
	h := newHarness(t, "test")

	rec := h.do(http.MethodGet, "/api/customers", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec).Type)

	rec = h.do(http.MethodGet, "/api/customers", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := identity.NewTokenIssuer(config.Config{AuthJWTSecret: "someone-else"})
	forged, err := other.Issue(tenantA, time.Hour)
	require.NoError(t, err)
	rec = h.do(http.MethodGet, "/api/customers", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSaleLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t, "test")
	token := h.token(tenantA)

	rec := h.do(http.MethodPost, "/api/customers", token, map[string]any{
		"name":           "Ravi",
		"mobile_no":      "9800000000",
		"opening_amount": "1000",
		"opening_fine":   "10",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	customer := decodeData[customerdomain.Customer](t, rec)

	rec = h.do(http.MethodPost, "/api/sales", token, map[string]any{
		"date":        "2024-05-01",
		"customer_id": customer.ID.String(),
		"item_name":   "Chain",
		"weight":      "1010",
		"bag":         "10",
		"net_weight":  "1000",
		"ghat_per_kg": "5",
		"touch":       "2",
		"wastage":     "1",
		"rate":        "500",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sale := decodeData[tradedomain.Sale](t, rec)
	assert.Equal(t, "S-002T-000001", sale.InvoiceNo)

	rec = h.do(http.MethodGet, "/api/customers/"+customer.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeData[customerdomain.Customer](t, rec)
	assert.True(t, got.ClosingAmount.Equal(decimal.RequireFromString("1500")), got.ClosingAmount.String())
	assert.True(t, got.ClosingFine.Equal(decimal.RequireFromString("40.15")), got.ClosingFine.String())

	rec = h.do(http.MethodGet, "/api/customers/"+customer.ID.String()+"/reconcile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeData[ledgerdomain.Reconciliation](t, rec).InSync)

	rec = h.do(http.MethodDelete, "/api/customers/"+customer.ID.String(), token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(http.MethodDelete, "/api/sales/"+sale.ID.String(), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(http.MethodDelete, "/api/sales/"+sale.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	amount, fine := h.stack.Balance(t, customer.ID)
	assert.True(t, amount.Equal(decimal.RequireFromString("1000")))
	assert.True(t, fine.Equal(decimal.RequireFromString("10")))
}

func TestForeignTenantGetsForbidden(t *testing.T) {
	h := newHarness(t, "test")
	c := h.stack.SeedCustomer(t, tenantA, "Ravi", "0", "0")

	rec := h.do(http.MethodGet, "/api/customers/"+c.ID.String(), h.token(tenantB), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decodeError(t, rec).Type)

	rec = h.do(http.MethodPost, "/api/customers/"+c.ID.String()+"/rebuild", h.token(tenantB), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestValidationErrorsCarryTheField(t *testing.T) {
	h := newHarness(t, "test")
	token := h.token(tenantA)

	rec := h.do(http.MethodPost, "/api/customers", token, map[string]any{"mobile_no": "9800000000"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "name", payload.Errors[0].Field)

	rec = h.do(http.MethodGet, "/api/sales?start_date=01-05-2024", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "start_date", decodeError(t, rec).Errors[0].Field)

	rec = h.do(http.MethodGet, "/api/customers/not-a-number/reconcile", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	h := newHarness(t, "test")
	rec := h.do(http.MethodGet, "/nowhere", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Type)
}

func TestDevTokenOnlyOutsideProduction(t *testing.T) {
	t.Run("development", func(t *testing.T) {
		h := newHarness(t, "development")
		rec := h.do(http.MethodPost, "/dev/token", "", map[string]any{"tenant_id": tenantA.String()})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		issued := decodeData[map[string]string](t, rec)

		rec = h.do(http.MethodGet, "/api/customers", issued["token"], nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("production", func(t *testing.T) {
		h := newHarness(t, "production")
		rec := h.do(http.MethodPost, "/dev/token", "", map[string]any{"tenant_id": tenantA.String()})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAnalyticsDefaultsToToday(t *testing.T) {
	h := newHarness(t, "test")
	rec := h.do(http.MethodGet, "/api/analytics/daily", h.token(tenantA), nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(http.MethodGet, "/api/analytics/daily?kind=gift", h.token(tenantA), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodGet, "/api/analytics/monthly?months=abc", h.token(tenantA), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteThrottleFailsOpen(t *testing.T) {
	h := newHarness(t, "test")
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	h.server.limiter = ratelimit.NewWriteLimiter(ratelimit.NewTokenBucket(client), 1, 1)

	rec := h.do(http.MethodPost, "/api/items", h.token(tenantA), map[string]any{"name": "Kada"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestIsWrite(t *testing.T) {
	assert.True(t, isWrite(http.MethodPost))
	assert.True(t, isWrite(http.MethodDelete))
	assert.False(t, isWrite(http.MethodGet))
}
