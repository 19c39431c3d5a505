package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	analyticsdomain "github.com/smallbiznis/bullionbook/internal/analytics/domain"
	"github.com/smallbiznis/bullionbook/internal/clock"
	companydomain "github.com/smallbiznis/bullionbook/internal/company/domain"
	"github.com/smallbiznis/bullionbook/internal/config"
	customerdomain "github.com/smallbiznis/bullionbook/internal/customer/domain"
	expensedomain "github.com/smallbiznis/bullionbook/internal/expense/domain"
	"github.com/smallbiznis/bullionbook/internal/identity"
	itemdomain "github.com/smallbiznis/bullionbook/internal/item/domain"
	ledgerdomain "github.com/smallbiznis/bullionbook/internal/ledger/domain"
	"github.com/smallbiznis/bullionbook/internal/observability"
	obsmiddleware "github.com/smallbiznis/bullionbook/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/bullionbook/internal/observability/metrics"
	obstracing "github.com/smallbiznis/bullionbook/internal/observability/tracing"
	paymentdomain "github.com/smallbiznis/bullionbook/internal/payment/domain"
	"github.com/smallbiznis/bullionbook/internal/ratelimit"
	tradedomain "github.com/smallbiznis/bullionbook/internal/trade/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, s *Server) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	tokens       *identity.TokenIssuer
	clock        clock.Clock
	limiter      *ratelimit.WriteLimiter
	customerSvc  customerdomain.Service
	itemSvc      itemdomain.Service
	tradeSvc     tradedomain.Service
	paymentSvc   paymentdomain.Service
	expenseSvc   expensedomain.Service
	companySvc   companydomain.Service
	ledgerSvc    ledgerdomain.Service
	analyticsSvc analyticsdomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Tokens       *identity.TokenIssuer
	Clock        clock.Clock
	Limiter      *ratelimit.WriteLimiter `optional:"true"`
	CustomerSvc  customerdomain.Service
	ItemSvc      itemdomain.Service
	TradeSvc     tradedomain.Service
	PaymentSvc   paymentdomain.Service
	ExpenseSvc   expensedomain.Service
	CompanySvc   companydomain.Service
	LedgerSvc    ledgerdomain.Service
	AnalyticsSvc analyticsdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		tokens:       p.Tokens,
		clock:        p.Clock,
		limiter:      p.Limiter,
		customerSvc:  p.CustomerSvc,
		itemSvc:      p.ItemSvc,
		tradeSvc:     p.TradeSvc,
		paymentSvc:   p.PaymentSvc,
		expenseSvc:   p.ExpenseSvc,
		companySvc:   p.CompanySvc,
		ledgerSvc:    p.LedgerSvc,
		analyticsSvc: p.AnalyticsSvc,
	}

	svc.registerAPIRoutes()
	if !p.Cfg.IsProduction() {
		svc.registerDevRoutes()
	}
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.TenantRequired(), s.WriteThrottle())

	// -------- Customers --------
	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/:customer_id", s.GetCustomerByID)
	api.PATCH("/customers/:customer_id", s.UpdateCustomer)
	api.DELETE("/customers/:customer_id", s.DeleteCustomer)
	api.GET("/customers/:customer_id/statement", s.GetCustomerStatement)
	api.GET("/customers/:customer_id/reconcile", s.ReconcileCustomer)
	api.POST("/customers/:customer_id/rebuild", s.RebuildCustomer)

	// -------- Items --------
	api.GET("/items", s.ListItems)
	api.POST("/items", s.CreateItem)
	api.GET("/items/:id", s.GetItemByID)
	api.PATCH("/items/:id", s.UpdateItem)
	api.DELETE("/items/:id", s.DeleteItem)

	// -------- Sales / Purchases --------
	api.GET("/sales", s.ListSales)
	api.POST("/sales", s.CreateSale)
	api.GET("/sales/:id", s.GetSaleByID)
	api.DELETE("/sales/:id", s.DeleteSale)
	api.GET("/purchases", s.ListPurchases)
	api.POST("/purchases", s.CreatePurchase)
	api.GET("/purchases/:id", s.GetPurchaseByID)
	api.DELETE("/purchases/:id", s.DeletePurchase)

	// -------- Payments --------
	api.GET("/payments", s.ListPayments)
	api.POST("/payments", s.CreatePayment)
	api.GET("/payments/:id", s.GetPaymentByID)
	api.DELETE("/payments/:id", s.DeletePayment)

	// -------- Expenses --------
	api.GET("/expenses", s.ListExpenses)
	api.POST("/expenses", s.CreateExpense)
	api.GET("/expenses/:id", s.GetExpenseByID)
	api.DELETE("/expenses/:id", s.DeleteExpense)

	// -------- Company --------
	api.GET("/company", s.GetCompany)
	api.PUT("/company", s.UpsertCompany)

	// -------- Analytics --------
	api.GET("/analytics/daily", s.GetDailySummary)
	api.GET("/analytics/dashboard", s.GetDashboardSummary)
	api.GET("/analytics/monthly", s.GetMonthlyTrends)
	api.GET("/analytics/daybook", s.GetDayBook)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
