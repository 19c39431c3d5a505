package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CompanySettings is the tenant's letterhead. There is at most one row per tenant.
type CompanySettings struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID    snowflake.ID `gorm:"not null;uniqueIndex" json:"tenant_id"`
	CompanyName string       `gorm:"not null" json:"company_name"`
	Address     *string      `json:"address,omitempty"`
	Phone       *string      `json:"phone,omitempty"`
	Email       *string      `json:"email,omitempty"`
	GSTNo       *string      `gorm:"column:gst_no" json:"gst_no,omitempty"`
	LogoURL     *string      `json:"logo_url,omitempty"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (CompanySettings) TableName() string { return "company_settings" }

func (c *CompanySettings) SetTenantID(id snowflake.ID) { c.TenantID = id }
