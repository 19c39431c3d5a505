package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Item is a catalog entry. Code is a slug of the name unless the caller picks
// one, and is unique within the tenant.
type Item struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID    snowflake.ID `gorm:"not null;index:,unique,composite:tenant_code,priority:1" json:"tenant_id"`
	Name        string       `gorm:"not null" json:"name"`
	Code        string       `gorm:"type:varchar(128);not null;index:,unique,composite:tenant_code,priority:2" json:"code"`
	Description *string      `json:"description,omitempty"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (Item) TableName() string { return "items" }

func (i *Item) SetTenantID(id snowflake.ID) { i.TenantID = id }
