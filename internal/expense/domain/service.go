package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"github.com/smallbiznis/bullionbook/pkg/repository"
)

type Repository = repository.Repository[Expense]

type CreateExpenseRequest struct {
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	Category    string          `json:"category" validate:"required,max=64"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Description *string         `json:"description"`
}

type ListExpenseRequest struct {
	StartDate *time.Time
	EndDate   *time.Time
	Category  string
}

// ExpenseList is a listing with its total.
type ExpenseList struct {
	Expenses []Expense      `json:"expenses"`
	Total    decimal.Decimal `json:"total"`
}

type Service interface {
	Create(context.Context, CreateExpenseRequest) (Expense, error)
	List(context.Context, ListExpenseRequest) (ExpenseList, error)
	GetByID(ctx context.Context, id string) (Expense, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID    = apperror.Validation("id", "invalid_id")
	ErrInvalidDate  = apperror.Validation("date", "invalid_date")
	ErrNotFound     = apperror.New(apperror.KindNotFound, "expense_not_found")
	ErrAccessDenied = apperror.New(apperror.KindAccessDenied, "expense_access_denied")
)
