package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	paymentdomain "github.com/smallbiznis/bullionbook/internal/payment/domain"
	tradedomain "github.com/smallbiznis/bullionbook/internal/trade/domain"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"github.com/smallbiznis/bullionbook/pkg/repository"
	"gorm.io/gorm"
)

type Repository = repository.Repository[Customer]

// Activity reads the financial records that reference a customer.
type Activity interface {
	WithTrx(tx *gorm.DB) Activity
	CountReferences(ctx context.Context, tenantID, customerID snowflake.ID) (int64, error)
	Sales(ctx context.Context, tenantID, customerID snowflake.ID, from, to time.Time) ([]tradedomain.Sale, error)
	Purchases(ctx context.Context, tenantID, customerID snowflake.ID, from, to time.Time) ([]tradedomain.Purchase, error)
	Payments(ctx context.Context, tenantID, customerID snowflake.ID, from, to time.Time) ([]paymentdomain.Payment, error)
}

type CreateCustomerRequest struct {
	Name          string          `json:"name" validate:"required,max=200"`
	MobileNo      string          `json:"mobile_no" validate:"required,max=32"`
	City          *string         `json:"city"`
	GSTNo         *string         `json:"gst_no" validate:"omitempty,max=32"`
	Address       *string         `json:"address"`
	OpeningAmount decimal.Decimal `json:"opening_amount"`
	OpeningFine   decimal.Decimal `json:"opening_fine"`
}

// UpdateCustomerRequest carries profile fields only. Nil fields are left as they are.
type UpdateCustomerRequest struct {
	ID       string  `json:"-"`
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	MobileNo *string `json:"mobile_no" validate:"omitempty,min=1,max=32"`
	City     *string `json:"city"`
	GSTNo    *string `json:"gst_no" validate:"omitempty,max=32"`
	Address  *string `json:"address"`
}

type ListCustomerRequest struct {
	Search string
}

type StatementRequest struct {
	ID        string
	StartDate *time.Time
	EndDate   *time.Time
}

// Side is how a balance reads on a statement: DR when the customer owes
// (zero included), CR otherwise.
type Side string

const (
	SideDebit  Side = "DR"
	SideCredit Side = "CR"
)

type StatementBalance struct {
	Value decimal.Decimal `json:"value"`
	Side  Side            `json:"side"`
}

func NewStatementBalance(v decimal.Decimal) StatementBalance {
	if v.IsNegative() {
		return StatementBalance{Value: v.Abs(), Side: SideCredit}
	}
	return StatementBalance{Value: v, Side: SideDebit}
}

type Statement struct {
	Customer  Customer                `json:"customer"`
	Amount    StatementBalance        `json:"amount"`
	Fine      StatementBalance        `json:"fine"`
	Sales     []tradedomain.Sale      `json:"sales"`
	Purchases []tradedomain.Purchase  `json:"purchases"`
	Payments  []paymentdomain.Payment `json:"payments"`
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	List(context.Context, ListCustomerRequest) ([]Customer, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	Update(context.Context, UpdateCustomerRequest) (Customer, error)
	Delete(ctx context.Context, id string) error
	Statement(context.Context, StatementRequest) (Statement, error)
}

var (
	ErrInvalidID    = apperror.Validation("id", "invalid_id")
	ErrNotFound     = apperror.New(apperror.KindNotFound, "customer_not_found")
	ErrAccessDenied = apperror.New(apperror.KindAccessDenied, "customer_access_denied")
	ErrHasActivity  = apperror.New(apperror.KindConflict, "customer_has_transactions")
)
