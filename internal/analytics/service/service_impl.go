package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bullionbook/internal/analytics/domain"
	"github.com/smallbiznis/bullionbook/internal/clock"
	"github.com/smallbiznis/bullionbook/internal/identity"
	paymentdomain "github.com/smallbiznis/bullionbook/internal/payment/domain"
	tradedomain "github.com/smallbiznis/bullionbook/internal/trade/domain"
	"github.com/smallbiznis/bullionbook/pkg/db/option"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Repo     domain.Repository
	Clock    clock.Clock
	Identity identity.Resolver
}

type Service struct {
	log      *zap.Logger
	repo     domain.Repository
	clock    clock.Clock
	identity identity.Resolver
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("analytics.service"),
		repo:     p.Repo,
		clock:    p.Clock,
		identity: p.Identity,
	}
}

// DailySummary totals the amount of one trade kind dated exactly on date.
func (s *Service) DailySummary(ctx context.Context, kind tradedomain.Kind, date time.Time) (domain.DailySummary, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return domain.DailySummary{}, err
	}
	if kind != tradedomain.KindSale && kind != tradedomain.KindPurchase {
		return domain.DailySummary{}, domain.ErrInvalidKind
	}
	day := option.Midnight(date)
	trades, err := s.repo.Trades(ctx, tenantID, kind, day, day)
	if err != nil {
		return domain.DailySummary{}, err
	}
	return summarize(trades), nil
}

func (s *Service) DashboardSummary(ctx context.Context) (domain.DashboardSummary, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	today := option.Midnight(s.clock.Now())

	sales, err := s.repo.Trades(ctx, tenantID, tradedomain.KindSale, today, today)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	purchases, err := s.repo.Trades(ctx, tenantID, tradedomain.KindPurchase, today, today)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	payments, err := s.repo.Payments(ctx, tenantID, time.Time{}, time.Time{})
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	daySales, dayPurchases := summarize(sales), summarize(purchases)
	out := domain.DashboardSummary{
		TodaySales:     daySales.Total,
		TodayPurchases: dayPurchases.Total,
		SalesCount:     daySales.Count,
		PurchasesCount: dayPurchases.Count,
		TotalCash:      decimal.Zero,
		TotalBank:      decimal.Zero,
	}
	for _, p := range payments {
		amount := p.Amount
		if p.TransactionType != paymentdomain.TransactionTypeReceipt {
			amount = amount.Neg()
		}
		switch p.PaymentType {
		case paymentdomain.PaymentTypeCash:
			out.TotalCash = out.TotalCash.Add(amount)
		case paymentdomain.PaymentTypeBank:
			out.TotalBank = out.TotalBank.Add(amount)
		}
	}
	return out, nil
}

// MonthlyTrends groups sales and purchases dated on or after the same day
// months calendar months ago. Only months with at least one record appear,
// oldest first.
func (s *Service) MonthlyTrends(ctx context.Context, months int) ([]domain.MonthlyTrend, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}
	if months == 0 {
		months = domain.DefaultTrendMonths
	}
	if months < 0 || months > domain.MaxTrendMonths {
		return nil, domain.ErrInvalidMonths
	}

	start := option.Midnight(s.clock.Now()).AddDate(0, -months, 0)
	sales, err := s.repo.Trades(ctx, tenantID, tradedomain.KindSale, start, time.Time{})
	if err != nil {
		return nil, err
	}
	purchases, err := s.repo.Trades(ctx, tenantID, tradedomain.KindPurchase, start, time.Time{})
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]*domain.MonthlyTrend)
	bucket := func(t tradedomain.Trade) *domain.MonthlyTrend {
		month := time.Time(t.Date).UTC().Format("2006-01")
		trend, ok := byMonth[month]
		if !ok {
			trend = &domain.MonthlyTrend{Month: month, Sales: decimal.Zero, Purchases: decimal.Zero}
			byMonth[month] = trend
		}
		return trend
	}
	for _, t := range sales {
		trend := bucket(t)
		trend.Sales = trend.Sales.Add(t.Amount)
	}
	for _, t := range purchases {
		trend := bucket(t)
		trend.Purchases = trend.Purchases.Add(t.Amount)
	}

	out := make([]domain.MonthlyTrend, 0, len(byMonth))
	for _, trend := range byMonth {
		trend.Profit = trend.Sales.Sub(trend.Purchases)
		out = append(out, *trend)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// DayBook lists every sale, purchase and payment dated on date, most recently
// entered first.
func (s *Service) DayBook(ctx context.Context, date time.Time) (domain.DayBook, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return domain.DayBook{}, err
	}
	day := option.Midnight(date)

	sales, err := s.repo.Trades(ctx, tenantID, tradedomain.KindSale, day, day)
	if err != nil {
		return domain.DayBook{}, err
	}
	purchases, err := s.repo.Trades(ctx, tenantID, tradedomain.KindPurchase, day, day)
	if err != nil {
		return domain.DayBook{}, err
	}
	payments, err := s.repo.Payments(ctx, tenantID, day, day)
	if err != nil {
		return domain.DayBook{}, err
	}

	book := domain.DayBook{
		Date:      day.Format("2006-01-02"),
		Entries:   make([]domain.DayBookEntry, 0, len(sales)+len(purchases)+len(payments)),
		Sales:     decimal.Zero,
		Purchases: decimal.Zero,
		Payments:  decimal.Zero,
		Receipts:  decimal.Zero,
	}
	for _, t := range sales {
		book.Entries = append(book.Entries, tradeEntry(domain.EntrySale, t))
		book.Sales = book.Sales.Add(t.Amount)
	}
	for _, t := range purchases {
		book.Entries = append(book.Entries, tradeEntry(domain.EntryPurchase, t))
		book.Purchases = book.Purchases.Add(t.Amount)
	}
	for _, p := range payments {
		kind := domain.EntryPayment
		if p.TransactionType == paymentdomain.TransactionTypeReceipt {
			kind = domain.EntryReceipt
			book.Receipts = book.Receipts.Add(p.Amount)
		} else {
			book.Payments = book.Payments.Add(p.Amount)
		}
		book.Entries = append(book.Entries, domain.DayBookEntry{
			Kind:       kind,
			ID:         p.ID,
			InvoiceNo:  p.InvoiceNo,
			CustomerID: p.CustomerID,
			Amount:     p.Amount,
			Fine:       p.Fine,
			CreatedAt:  p.CreatedAt,
		})
	}
	sort.SliceStable(book.Entries, func(i, j int) bool {
		return book.Entries[i].CreatedAt.After(book.Entries[j].CreatedAt)
	})
	return book, nil
}

func summarize(trades []tradedomain.Trade) domain.DailySummary {
	out := domain.DailySummary{Total: decimal.Zero}
	for _, t := range trades {
		out.Total = out.Total.Add(t.Amount)
		out.Count++
	}
	return out
}

func tradeEntry(kind domain.EntryKind, t tradedomain.Trade) domain.DayBookEntry {
	return domain.DayBookEntry{
		Kind:       kind,
		ID:         t.ID,
		InvoiceNo:  t.InvoiceNo,
		CustomerID: t.CustomerID,
		Amount:     t.Amount,
		Fine:       t.Fine,
		CreatedAt:  t.CreatedAt,
	}
}
