package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Expense is a business outgoing that never touches a customer balance.
type Expense struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID    snowflake.ID    `gorm:"not null;index" json:"tenant_id"`
	Date        datatypes.Date  `gorm:"not null;index" json:"date"`
	Category    string          `gorm:"type:varchar(64);not null" json:"category"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"amount"`
	Description *string         `json:"description,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

func (Expense) TableName() string { return "expenses" }

func (e *Expense) SetTenantID(id snowflake.ID) { e.TenantID = id }
