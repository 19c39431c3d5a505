package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bullionbook/internal/calc"
	"github.com/smallbiznis/bullionbook/internal/identity"
	invoicedomain "github.com/smallbiznis/bullionbook/internal/invoiceno/domain"
	ledgerdomain "github.com/smallbiznis/bullionbook/internal/ledger/domain"
	obslogger "github.com/smallbiznis/bullionbook/internal/observability/logger"
	"github.com/smallbiznis/bullionbook/internal/trade/domain"
	"github.com/smallbiznis/bullionbook/pkg/db/option"
	"github.com/smallbiznis/bullionbook/pkg/repository"
	"github.com/smallbiznis/bullionbook/pkg/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	GenID     *snowflake.Node
	Sales     domain.SaleRepository
	Purchases domain.PurchaseRepository
	Ledger    ledgerdomain.Service
	Invoices  invoicedomain.Service
	Identity  identity.Resolver
}

type Service struct {
	log       *zap.Logger
	genID     *snowflake.Node
	sales     domain.SaleRepository
	purchases domain.PurchaseRepository
	ledger    ledgerdomain.Service
	invoices  invoicedomain.Service
	identity  identity.Resolver
}

func New(p Params) domain.Service {
	return &Service{
		log:       p.Log.Named("trade.service"),
		genID:     p.GenID,
		sales:     p.Sales,
		purchases: p.Purchases,
		ledger:    p.Ledger,
		invoices:  p.Invoices,
		identity:  p.Identity,
	}
}

// record is implemented by *Sale and *Purchase through the embedded Trade.
type record[T any] interface {
	repository.TenantScoped[T]
	Base() *domain.Trade
}

// series binds one trade kind to its table, ledger source and numbering series.
type series[T any] struct {
	kind    domain.Kind
	source  ledgerdomain.SourceType
	invoice invoicedomain.Kind
	repo    repository.Repository[T]
}

func (s *Service) saleSeries() series[domain.Sale] {
	return series[domain.Sale]{domain.KindSale, ledgerdomain.SourceTypeSale, invoicedomain.KindSale, s.sales}
}

func (s *Service) purchaseSeries() series[domain.Purchase] {
	return series[domain.Purchase]{domain.KindPurchase, ledgerdomain.SourceTypePurchase, invoicedomain.KindPurchase, s.purchases}
}

func (s *Service) CreateSale(ctx context.Context, req domain.CreateTradeRequest) (domain.Sale, error) {
	return create(ctx, s, s.saleSeries(), req)
}

func (s *Service) CreatePurchase(ctx context.Context, req domain.CreateTradeRequest) (domain.Purchase, error) {
	return create(ctx, s, s.purchaseSeries(), req)
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.Sale, error) {
	return get(ctx, s, s.saleSeries(), id)
}

func (s *Service) GetPurchase(ctx context.Context, id string) (domain.Purchase, error) {
	return get(ctx, s, s.purchaseSeries(), id)
}

func (s *Service) ListSales(ctx context.Context, req domain.ListTradeRequest) ([]domain.Sale, error) {
	return list(ctx, s, s.saleSeries(), req)
}

func (s *Service) ListPurchases(ctx context.Context, req domain.ListTradeRequest) ([]domain.Purchase, error) {
	return list(ctx, s, s.purchaseSeries(), req)
}

func (s *Service) DeleteSale(ctx context.Context, id string) error {
	return remove(ctx, s, s.saleSeries(), id)
}

func (s *Service) DeletePurchase(ctx context.Context, id string) error {
	return remove(ctx, s, s.purchaseSeries(), id)
}

func create[T any, PT record[T]](ctx context.Context, s *Service, sr series[T], req domain.CreateTradeRequest) (T, error) {
	var rec T
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return rec, err
	}
	req.ItemName = strings.TrimSpace(req.ItemName)
	if err := validation.Struct(req); err != nil {
		return rec, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return rec, err
	}
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return rec, domain.ErrInvalidCustomer
	}

	derived := calc.DeriveTrade(calc.TradeInput{
		NetWeight: req.NetWeight,
		GhatPerKg: req.GhatPerKg,
		Touch:     req.Touch,
		Wastage:   req.Wastage,
		Pics:      req.Pics,
		Rate:      req.Rate,
	})

	now := time.Now().UTC()
	base := PT(&rec).Base()
	*base = domain.Trade{
		ID:         s.genID.Generate(),
		Date:       datatypes.Date(date),
		CustomerID: customerID,
		ItemName:   req.ItemName,
		Weight:     req.Weight,
		Bag:        req.Bag,
		NetWeight:  req.NetWeight,
		GhatPerKg:  req.GhatPerKg,
		TotalGhat:  derived.TotalGhat,
		Touch:      req.Touch,
		Wastage:    req.Wastage,
		Fine:       derived.Fine,
		Pics:       req.Pics,
		Rate:       req.Rate,
		Amount:     derived.Amount,
		Remarks:    trimmed(req.Remarks),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	balance, err := s.ledger.Apply(ctx, tenantID, customerID, ledgerdomain.Mutation{
		Source:    sr.source,
		Operation: ledgerdomain.OperationCreate,
		Write: func(ctx context.Context, tx *gorm.DB) (ledgerdomain.Delta, error) {
			number, err := s.invoices.Next(ctx, tx, tenantID, sr.invoice, date)
			if err != nil {
				return ledgerdomain.Delta{}, err
			}
			base.InvoiceNo = number
			if err := sr.repo.WithTrx(tx).Insert(ctx, tenantID, &rec); err != nil {
				return ledgerdomain.Delta{}, err
			}
			return ledgerdomain.DeltaFor(sr.source, ledgerdomain.OperationCreate, base.Amount, base.Fine)
		},
	})
	if err != nil {
		var zero T
		return zero, err
	}

	obslogger.WithContext(ctx, s.log).Info("trade recorded",
		zap.String("kind", string(sr.kind)),
		zap.String("invoice_no", base.InvoiceNo),
		zap.String("customer_id", customerID.String()),
		zap.String("closing_amount", balance.ClosingAmount.String()),
		zap.String("closing_fine", balance.ClosingFine.String()),
	)
	return rec, nil
}

func get[T any](ctx context.Context, s *Service, sr series[T], id string) (T, error) {
	var zero T
	tenantID, recID, err := s.scope(ctx, id)
	if err != nil {
		return zero, err
	}
	item, err := sr.repo.Get(ctx, tenantID, recID)
	if err != nil {
		return zero, err
	}
	return *item, nil
}

func list[T any](ctx context.Context, s *Service, sr series[T], req domain.ListTradeRequest) ([]T, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}

	opts := []option.QueryOption{option.OrderByDateDesc()}
	if req.StartDate != nil || req.EndDate != nil {
		var from, to time.Time
		if req.StartDate != nil {
			from = *req.StartDate
		}
		if req.EndDate != nil {
			to = *req.EndDate
		}
		opts = append(opts, option.DateRange(from, to))
	}
	if strings.TrimSpace(req.CustomerID) != "" {
		customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
		if err != nil || customerID == 0 {
			return nil, domain.ErrInvalidCustomer
		}
		opts = append(opts, option.CustomerID(customerID.Int64()))
	}

	items, err := sr.repo.List(ctx, tenantID, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out, nil
}

// remove deletes the record and reverses its contribution. The row is read
// again under the customer lock so two concurrent deletes reverse it once.
func remove[T any, PT record[T]](ctx context.Context, s *Service, sr series[T], id string) error {
	tenantID, recID, err := s.scope(ctx, id)
	if err != nil {
		return err
	}
	existing, err := sr.repo.Get(ctx, tenantID, recID)
	if err != nil {
		return err
	}
	customerID := PT(existing).Base().CustomerID

	_, err = s.ledger.Apply(ctx, tenantID, customerID, ledgerdomain.Mutation{
		Source:    sr.source,
		Operation: ledgerdomain.OperationDelete,
		Write: func(ctx context.Context, tx *gorm.DB) (ledgerdomain.Delta, error) {
			repo := sr.repo.WithTrx(tx)
			current, err := repo.Get(ctx, tenantID, recID)
			if err != nil {
				return ledgerdomain.Delta{}, err
			}
			if err := repo.Delete(ctx, tenantID, recID); err != nil {
				return ledgerdomain.Delta{}, err
			}
			base := PT(current).Base()
			return ledgerdomain.DeltaFor(sr.source, ledgerdomain.OperationDelete, base.Amount, base.Fine)
		},
	})
	if err != nil {
		return err
	}

	obslogger.WithContext(ctx, s.log).Info("trade deleted",
		zap.String("kind", string(sr.kind)),
		zap.String("id", recID.String()),
	)
	return nil
}

func (s *Service) scope(ctx context.Context, id string) (snowflake.ID, snowflake.ID, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return 0, 0, err
	}
	recID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || recID == 0 {
		return 0, 0, domain.ErrInvalidID
	}
	return tenantID, recID, nil
}

func parseDate(value string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	return d, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
