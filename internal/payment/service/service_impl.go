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
	"github.com/smallbiznis/bullionbook/internal/payment/domain"
	"github.com/smallbiznis/bullionbook/pkg/db/option"
	"github.com/smallbiznis/bullionbook/pkg/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Ledger   ledgerdomain.Service
	Invoices invoicedomain.Service
	Identity identity.Resolver
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	ledger   ledgerdomain.Service
	invoices invoicedomain.Service
	identity identity.Resolver
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("payment.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		ledger:   p.Ledger,
		invoices: p.Invoices,
		identity: p.Identity,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePaymentRequest) (domain.Payment, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return domain.Payment{}, err
	}
	if err := validation.Struct(req); err != nil {
		return domain.Payment{}, err
	}
	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), time.UTC)
	if err != nil {
		return domain.Payment{}, domain.ErrInvalidDate
	}
	customerID, err := parseID(req.CustomerID, domain.ErrInvalidCustomer)
	if err != nil {
		return domain.Payment{}, err
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		ID:              s.genID.Generate(),
		Date:            datatypes.Date(date),
		CustomerID:      customerID,
		TransactionType: req.TransactionType,
		PaymentType:     req.PaymentType,
		Gross:           req.Gross,
		Purity:          req.Purity,
		WastBadiKg:      req.WastBadiKg,
		Fine:            calc.PaymentFine(req.Gross, req.Purity),
		Rate:            req.Rate,
		Amount:          req.Amount,
		Remarks:         trimmed(req.Remarks),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	source := ledgerdomain.PaymentSource(payment.TransactionType)

	balance, err := s.ledger.Apply(ctx, tenantID, customerID, ledgerdomain.Mutation{
		Source:    source,
		Operation: ledgerdomain.OperationCreate,
		Write: func(ctx context.Context, tx *gorm.DB) (ledgerdomain.Delta, error) {
			number, err := s.invoices.Next(ctx, tx, tenantID, invoicedomain.KindPayment, date)
			if err != nil {
				return ledgerdomain.Delta{}, err
			}
			payment.InvoiceNo = number
			if err := s.repo.WithTrx(tx).Insert(ctx, tenantID, &payment); err != nil {
				return ledgerdomain.Delta{}, err
			}
			return ledgerdomain.DeltaFor(source, ledgerdomain.OperationCreate, payment.Amount, payment.Fine)
		},
	})
	if err != nil {
		return domain.Payment{}, err
	}

	obslogger.WithContext(ctx, s.log).Info("payment recorded",
		zap.String("transaction_type", string(payment.TransactionType)),
		zap.String("invoice_no", payment.InvoiceNo),
		zap.String("customer_id", customerID.String()),
		zap.String("closing_amount", balance.ClosingAmount.String()),
		zap.String("closing_fine", balance.ClosingFine.String()),
	)
	return withRateCut(payment), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	tenantID, paymentID, err := s.scope(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}
	item, err := s.repo.Get(ctx, tenantID, paymentID)
	if err != nil {
		return domain.Payment{}, err
	}
	return withRateCut(*item), nil
}

func (s *Service) List(ctx context.Context, req domain.ListPaymentRequest) ([]domain.Payment, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}

	opts := []option.QueryOption{option.OrderByDateDesc()}
	var from, to time.Time
	if req.StartDate != nil {
		from = *req.StartDate
	}
	if req.EndDate != nil {
		to = *req.EndDate
	}
	opts = append(opts, option.DateRange(from, to))
	if strings.TrimSpace(req.CustomerID) != "" {
		customerID, err := parseID(req.CustomerID, domain.ErrInvalidCustomer)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.CustomerID(customerID.Int64()))
	}
	switch req.TransactionType {
	case "":
	case domain.TransactionTypePayment, domain.TransactionTypeReceipt:
		opts = append(opts, option.Where("transaction_type = ?", req.TransactionType))
	default:
		return nil, domain.ErrInvalidTransactionType
	}

	items, err := s.repo.List(ctx, tenantID, opts...)
	if err != nil {
		return nil, err
	}
	payments := make([]domain.Payment, 0, len(items))
	for _, item := range items {
		payments = append(payments, withRateCut(*item))
	}
	return payments, nil
}

// Delete removes the payment and reverses its balance effect. The row is read
// again under the customer lock so a concurrent delete is reversed only once.
func (s *Service) Delete(ctx context.Context, id string) error {
	tenantID, paymentID, err := s.scope(ctx, id)
	if err != nil {
		return err
	}
	existing, err := s.repo.Get(ctx, tenantID, paymentID)
	if err != nil {
		return err
	}
	source := ledgerdomain.PaymentSource(existing.TransactionType)

	_, err = s.ledger.Apply(ctx, tenantID, existing.CustomerID, ledgerdomain.Mutation{
		Source:    source,
		Operation: ledgerdomain.OperationDelete,
		Write: func(ctx context.Context, tx *gorm.DB) (ledgerdomain.Delta, error) {
			repo := s.repo.WithTrx(tx)
			current, err := repo.Get(ctx, tenantID, paymentID)
			if err != nil {
				return ledgerdomain.Delta{}, err
			}
			if err := repo.Delete(ctx, tenantID, paymentID); err != nil {
				return ledgerdomain.Delta{}, err
			}
			return ledgerdomain.DeltaFor(source, ledgerdomain.OperationDelete, current.Amount, current.Fine)
		},
	})
	if err != nil {
		return err
	}

	obslogger.WithContext(ctx, s.log).Info("payment deleted", zap.String("payment_id", paymentID.String()))
	return nil
}

func (s *Service) scope(ctx context.Context, id string) (snowflake.ID, snowflake.ID, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return 0, 0, err
	}
	paymentID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return 0, 0, err
	}
	return tenantID, paymentID, nil
}

func withRateCut(p domain.Payment) domain.Payment {
	p.RateCutFine = calc.RateCutFine(p.Fine, p.Rate)
	return p
}

func parseID(value string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
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
