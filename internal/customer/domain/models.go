package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Customer is a trading party with two running balances: currency (amount) and
// pure metal weight (fine). Closing balances are owned by the ledger.
type Customer struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID      snowflake.ID    `gorm:"not null;index" json:"tenant_id"`
	Name          string          `gorm:"not null" json:"name"`
	MobileNo      string          `gorm:"column:mobile_no;not null" json:"mobile_no"`
	City          *string         `json:"city,omitempty"`
	GSTNo         *string         `gorm:"column:gst_no" json:"gst_no,omitempty"`
	Address       *string         `json:"address,omitempty"`
	OpeningAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"opening_amount"`
	OpeningFine   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"opening_fine"`
	ClosingAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"closing_amount"`
	ClosingFine   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"closing_fine"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

func (c *Customer) SetTenantID(id snowflake.ID) { c.TenantID = id }
