package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Kind tells sales and purchases apart. Both share the Trade columns.
type Kind string

const (
	KindSale     Kind = "sale"
	KindPurchase Kind = "purchase"
)

// Trade is a bullion or jewelry line bought from or sold to a customer.
// Weights are grams; TotalGhat, Fine and Amount are derived at creation.
type Trade struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID   snowflake.ID    `gorm:"not null;index:,unique,composite:tenant_invoice,priority:1" json:"tenant_id"`
	InvoiceNo  string          `gorm:"not null;index:,unique,composite:tenant_invoice,priority:2" json:"invoice_no"`
	Date       datatypes.Date  `gorm:"not null;index" json:"date"`
	CustomerID snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	ItemName   string          `gorm:"not null" json:"item_name"`
	Weight     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"weight"`
	Bag        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"bag"`
	NetWeight  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"net_weight"`
	GhatPerKg  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"ghat_per_kg"`
	TotalGhat  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_ghat"`
	Touch      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"touch"`
	Wastage    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"wastage"`
	Fine       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"fine"`
	Pics       int             `gorm:"not null;default:0" json:"pics"`
	Rate       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"rate"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"amount"`
	Remarks    *string         `json:"remarks,omitempty"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null" json:"updated_at"`
}

func (t *Trade) SetTenantID(id snowflake.ID) { t.TenantID = id }

type Sale struct {
	Trade
}

func (Sale) TableName() string { return "sales" }

type Purchase struct {
	Trade
}

func (Purchase) TableName() string { return "purchases" }

// Base exposes the shared columns of a Sale or Purchase.
func (t *Trade) Base() *Trade { return t }
