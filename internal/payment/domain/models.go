package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TransactionType is the direction of a payment. A payment is money or metal
// handed to the customer; a receipt is received from them.
type TransactionType string

const (
	TransactionTypePayment TransactionType = "payment"
	TransactionTypeReceipt TransactionType = "receipt"
)

// PaymentType is the settlement medium.
type PaymentType string

const (
	PaymentTypeFine          PaymentType = "fine"
	PaymentTypeCash          PaymentType = "cash"
	PaymentTypeBank          PaymentType = "bank"
	PaymentTypeRateCutFine   PaymentType = "rate_cut_fine"
	PaymentTypeRateCutAmount PaymentType = "rate_cut_amount"
	PaymentTypeRoopu         PaymentType = "roopu"
)

type Payment struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID        snowflake.ID    `gorm:"not null;index:,unique,composite:tenant_invoice,priority:1" json:"tenant_id"`
	InvoiceNo       string          `gorm:"not null;index:,unique,composite:tenant_invoice,priority:2" json:"invoice_no"`
	Date            datatypes.Date  `gorm:"not null;index" json:"date"`
	CustomerID      snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	TransactionType TransactionType `gorm:"type:varchar(16);not null" json:"transaction_type"`
	PaymentType     PaymentType     `gorm:"type:varchar(32);not null" json:"payment_type"`
	Gross           decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"gross"`
	Purity          decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"purity"`
	WastBadiKg      decimal.Decimal `gorm:"column:wast_badi_kg;type:decimal(20,4);not null;default:0" json:"wast_badi_kg"`
	Fine            decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"fine"`
	Rate            decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"rate"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"amount"`
	Remarks         *string         `json:"remarks,omitempty"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`

	// RateCutFine is fine valued at rate. It is informational and never stored.
	RateCutFine decimal.Decimal `gorm:"-" json:"rate_cut_fine"`
}

func (Payment) TableName() string { return "payments" }

func (p *Payment) SetTenantID(id snowflake.ID) { p.TenantID = id }
