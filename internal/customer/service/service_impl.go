package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bullionbook/internal/customer/domain"
	"github.com/smallbiznis/bullionbook/internal/identity"
	ledgerdomain "github.com/smallbiznis/bullionbook/internal/ledger/domain"
	obslogger "github.com/smallbiznis/bullionbook/internal/observability/logger"
	"github.com/smallbiznis/bullionbook/pkg/db/option"
	"github.com/smallbiznis/bullionbook/pkg/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Activity domain.Activity
	Ledger   ledgerdomain.Service
	Identity identity.Resolver
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	activity domain.Activity
	ledger   ledgerdomain.Service
	identity identity.Resolver
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("customer.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		activity: p.Activity,
		ledger:   p.Ledger,
		identity: p.Identity,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return domain.Customer{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.MobileNo = strings.TrimSpace(req.MobileNo)
	if err := validation.Struct(req); err != nil {
		return domain.Customer{}, err
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:            s.genID.Generate(),
		Name:          req.Name,
		MobileNo:      req.MobileNo,
		City:          trimmed(req.City),
		GSTNo:         trimmed(req.GSTNo),
		Address:       trimmed(req.Address),
		OpeningAmount: req.OpeningAmount,
		OpeningFine:   req.OpeningFine,
		ClosingAmount: req.OpeningAmount,
		ClosingFine:   req.OpeningFine,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, tenantID, &customer); err != nil {
		return domain.Customer{}, err
	}

	obslogger.WithContext(ctx, s.log).Info("customer created", zap.String("customer_id", customer.ID.String()))
	return customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) ([]domain.Customer, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}

	opts := []option.QueryOption{option.OrderBy("name asc, id asc")}
	if search := strings.TrimSpace(req.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		opts = append(opts, option.Where("LOWER(name) LIKE ? OR mobile_no LIKE ?", like, like))
	}

	items, err := s.repo.List(ctx, tenantID, opts...)
	if err != nil {
		return nil, err
	}
	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		customers = append(customers, *item)
	}
	return customers, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	tenantID, customerID, err := s.scope(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	item, err := s.repo.Get(ctx, tenantID, customerID)
	if err != nil {
		return domain.Customer{}, err
	}
	return *item, nil
}

// Update changes profile fields. Opening and closing balances are not
// reachable from here.
func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	tenantID, customerID, err := s.scope(ctx, req.ID)
	if err != nil {
		return domain.Customer{}, err
	}
	if err := validation.Struct(req); err != nil {
		return domain.Customer{}, err
	}

	patch := map[string]any{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		patch["name"] = strings.TrimSpace(*req.Name)
	}
	if req.MobileNo != nil {
		patch["mobile_no"] = strings.TrimSpace(*req.MobileNo)
	}
	if req.City != nil {
		patch["city"] = trimmed(req.City)
	}
	if req.GSTNo != nil {
		patch["gst_no"] = trimmed(req.GSTNo)
	}
	if req.Address != nil {
		patch["address"] = trimmed(req.Address)
	}

	if err := s.repo.Update(ctx, tenantID, customerID, patch); err != nil {
		return domain.Customer{}, err
	}
	item, err := s.repo.Get(ctx, tenantID, customerID)
	if err != nil {
		return domain.Customer{}, err
	}
	return *item, nil
}

// Delete removes a customer that no sale, purchase or payment references. The
// check and the delete share the customer's ledger lock so no record can be
// written against the customer in between.
func (s *Service) Delete(ctx context.Context, id string) error {
	tenantID, customerID, err := s.scope(ctx, id)
	if err != nil {
		return err
	}

	return s.ledger.Locked(ctx, tenantID, customerID, func(ctx context.Context, tx *gorm.DB, _ *domain.Customer) error {
		refs, err := s.activity.WithTrx(tx).CountReferences(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return domain.ErrHasActivity
		}
		return s.repo.WithTrx(tx).Delete(ctx, tenantID, customerID)
	})
}

func (s *Service) Statement(ctx context.Context, req domain.StatementRequest) (domain.Statement, error) {
	tenantID, customerID, err := s.scope(ctx, req.ID)
	if err != nil {
		return domain.Statement{}, err
	}
	customer, err := s.repo.Get(ctx, tenantID, customerID)
	if err != nil {
		return domain.Statement{}, err
	}

	var from, to time.Time
	if req.StartDate != nil {
		from = *req.StartDate
	}
	if req.EndDate != nil {
		to = *req.EndDate
	}

	sales, err := s.activity.Sales(ctx, tenantID, customerID, from, to)
	if err != nil {
		return domain.Statement{}, err
	}
	purchases, err := s.activity.Purchases(ctx, tenantID, customerID, from, to)
	if err != nil {
		return domain.Statement{}, err
	}
	payments, err := s.activity.Payments(ctx, tenantID, customerID, from, to)
	if err != nil {
		return domain.Statement{}, err
	}

	return domain.Statement{
		Customer:  *customer,
		Amount:    domain.NewStatementBalance(customer.ClosingAmount),
		Fine:      domain.NewStatementBalance(customer.ClosingFine),
		Sales:     sales,
		Purchases: purchases,
		Payments:  payments,
	}, nil
}

func (s *Service) scope(ctx context.Context, id string) (snowflake.ID, snowflake.ID, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return 0, 0, err
	}
	customerID, err := parseID(id)
	if err != nil {
		return 0, 0, err
	}
	return tenantID, customerID, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
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
