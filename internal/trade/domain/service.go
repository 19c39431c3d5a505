package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"github.com/smallbiznis/bullionbook/pkg/repository"
)

type (
	SaleRepository     = repository.Repository[Sale]
	PurchaseRepository = repository.Repository[Purchase]
)

// CreateTradeRequest is the user input for a sale or purchase. TotalGhat, Fine,
// Amount and the invoice number are derived and cannot be supplied.
type CreateTradeRequest struct {
	Date       string          `json:"date" validate:"required,datetime=2006-01-02"`
	CustomerID string          `json:"customer_id" validate:"required"`
	ItemName   string          `json:"item_name" validate:"required,max=200"`
	Weight     decimal.Decimal `json:"weight" validate:"gte=0"`
	Bag        decimal.Decimal `json:"bag" validate:"gte=0"`
	NetWeight  decimal.Decimal `json:"net_weight" validate:"gte=0"`
	GhatPerKg  decimal.Decimal `json:"ghat_per_kg" validate:"gte=0"`
	Touch      decimal.Decimal `json:"touch" validate:"gte=0"`
	Wastage    decimal.Decimal `json:"wastage"`
	Pics       int             `json:"pics" validate:"gte=0"`
	Rate       decimal.Decimal `json:"rate" validate:"gte=0"`
	Remarks    *string         `json:"remarks"`
}

type ListTradeRequest struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CustomerID string
}

type Service interface {
	CreateSale(context.Context, CreateTradeRequest) (Sale, error)
	CreatePurchase(context.Context, CreateTradeRequest) (Purchase, error)
	GetSale(ctx context.Context, id string) (Sale, error)
	GetPurchase(ctx context.Context, id string) (Purchase, error)
	ListSales(context.Context, ListTradeRequest) ([]Sale, error)
	ListPurchases(context.Context, ListTradeRequest) ([]Purchase, error)
	DeleteSale(ctx context.Context, id string) error
	DeletePurchase(ctx context.Context, id string) error
}

var (
	ErrInvalidID              = apperror.Validation("id", "invalid_id")
	ErrInvalidCustomer        = apperror.Validation("customer_id", "invalid_customer_id")
	ErrInvalidDate            = apperror.Validation("date", "invalid_date")
	ErrSaleNotFound           = apperror.New(apperror.KindNotFound, "sale_not_found")
	ErrSaleAccessDenied       = apperror.New(apperror.KindAccessDenied, "sale_access_denied")
	ErrPurchaseNotFound       = apperror.New(apperror.KindNotFound, "purchase_not_found")
	ErrPurchaseAccessDenied   = apperror.New(apperror.KindAccessDenied, "purchase_access_denied")
	ErrDuplicateInvoiceNumber = apperror.New(apperror.KindConflict, "duplicate_invoice_number")
)
