package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Kind selects the numbering series.
type Kind string

const (
	KindSale     Kind = "sale"
	KindPurchase Kind = "purchase"
	KindPayment  Kind = "payment"
)

// Sequence is the last number handed out for a tenant and series.
type Sequence struct {
	TenantID  snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	Kind      Kind         `gorm:"primaryKey;type:varchar(16)"`
	LastValue int64        `gorm:"not null;default:0"`
	UpdatedAt time.Time    `gorm:"not null"`
}

func (Sequence) TableName() string { return "invoice_sequences" }
