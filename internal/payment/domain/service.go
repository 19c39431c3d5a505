package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"github.com/smallbiznis/bullionbook/pkg/repository"
)

type Repository = repository.Repository[Payment]

// CreatePaymentRequest carries the user-entered fields. Fine is derived from
// gross and purity; amount is taken as entered.
type CreatePaymentRequest struct {
	Date            string          `json:"date" validate:"required,datetime=2006-01-02"`
	CustomerID      string          `json:"customer_id" validate:"required"`
	TransactionType TransactionType `json:"transaction_type" validate:"required,oneof=payment receipt"`
	PaymentType     PaymentType     `json:"payment_type" validate:"required,oneof=fine cash bank rate_cut_fine rate_cut_amount roopu"`
	Gross           decimal.Decimal `json:"gross" validate:"gte=0"`
	Purity          decimal.Decimal `json:"purity" validate:"gte=0"`
	WastBadiKg      decimal.Decimal `json:"wast_badi_kg" validate:"gte=0"`
	Rate            decimal.Decimal `json:"rate" validate:"gte=0"`
	Amount          decimal.Decimal `json:"amount" validate:"gte=0"`
	Remarks         *string         `json:"remarks"`
}

type ListPaymentRequest struct {
	StartDate       *time.Time
	EndDate         *time.Time
	CustomerID      string
	TransactionType TransactionType
}

type Service interface {
	Create(context.Context, CreatePaymentRequest) (Payment, error)
	GetByID(ctx context.Context, id string) (Payment, error)
	List(context.Context, ListPaymentRequest) ([]Payment, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID              = apperror.Validation("id", "invalid_id")
	ErrInvalidCustomer        = apperror.Validation("customer_id", "invalid_customer_id")
	ErrInvalidDate            = apperror.Validation("date", "invalid_date")
	ErrInvalidTransactionType = apperror.Validation("transaction_type", "invalid_transaction_type")
	ErrNotFound               = apperror.New(apperror.KindNotFound, "payment_not_found")
	ErrAccessDenied           = apperror.New(apperror.KindAccessDenied, "payment_access_denied")
	ErrDuplicateInvoiceNumber = apperror.New(apperror.KindConflict, "duplicate_invoice_number")
)
