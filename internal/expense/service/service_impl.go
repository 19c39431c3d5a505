package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bullionbook/internal/expense/domain"
	"github.com/smallbiznis/bullionbook/internal/identity"
	"github.com/smallbiznis/bullionbook/pkg/db/option"
	"github.com/smallbiznis/bullionbook/pkg/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Identity identity.Resolver
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	identity identity.Resolver
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("expense.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		identity: p.Identity,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateExpenseRequest) (domain.Expense, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return domain.Expense{}, err
	}
	req.Category = strings.TrimSpace(req.Category)
	if err := validation.Struct(req); err != nil {
		return domain.Expense{}, err
	}
	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), time.UTC)
	if err != nil {
		return domain.Expense{}, domain.ErrInvalidDate
	}

	now := time.Now().UTC()
	expense := domain.Expense{
		ID:        s.genID.Generate(),
		Date:      datatypes.Date(date),
		Category:  req.Category,
		Amount:    req.Amount,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != nil {
		if d := strings.TrimSpace(*req.Description); d != "" {
			expense.Description = &d
		}
	}
	if err := s.repo.Insert(ctx, tenantID, &expense); err != nil {
		return domain.Expense{}, err
	}
	return expense, nil
}

// List returns expenses dated within the inclusive range, newest first.
func (s *Service) List(ctx context.Context, req domain.ListExpenseRequest) (domain.ExpenseList, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return domain.ExpenseList{}, err
	}

	var from, to time.Time
	if req.StartDate != nil {
		from = *req.StartDate
	}
	if req.EndDate != nil {
		to = *req.EndDate
	}
	opts := []option.QueryOption{option.DateRange(from, to), option.OrderByDateDesc()}
	if category := strings.TrimSpace(req.Category); category != "" {
		opts = append(opts, option.Where("category = ?", category))
	}

	rows, err := s.repo.List(ctx, tenantID, opts...)
	if err != nil {
		return domain.ExpenseList{}, err
	}
	out := domain.ExpenseList{Expenses: make([]domain.Expense, 0, len(rows)), Total: decimal.Zero}
	for _, row := range rows {
		out.Expenses = append(out.Expenses, *row)
		out.Total = out.Total.Add(row.Amount)
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Expense, error) {
	tenantID, expenseID, err := s.scope(ctx, id)
	if err != nil {
		return domain.Expense{}, err
	}
	row, err := s.repo.Get(ctx, tenantID, expenseID)
	if err != nil {
		return domain.Expense{}, err
	}
	return *row, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tenantID, expenseID, err := s.scope(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, tenantID, expenseID)
}

func (s *Service) scope(ctx context.Context, id string) (snowflake.ID, snowflake.ID, error) {
	tenantID, err := s.identity.CurrentTenantID(ctx)
	if err != nil {
		return 0, 0, err
	}
	expenseID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || expenseID == 0 {
		return 0, 0, domain.ErrInvalidID
	}
	return tenantID, expenseID, nil
}
