package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
)

type Repository interface {
	Get(ctx context.Context, tenantID snowflake.ID) (*CompanySettings, error)
	// Upsert inserts the tenant's settings or overwrites the profile columns of
	// the existing row.
	Upsert(ctx context.Context, tenantID snowflake.ID, settings *CompanySettings) error
}

type UpsertCompanyRequest struct {
	CompanyName string  `json:"company_name" validate:"required,max=200"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
	Email       *string `json:"email" validate:"omitempty,email"`
	GSTNo       *string `json:"gst_no" validate:"omitempty,max=32"`
	LogoURL     *string `json:"logo_url" validate:"omitempty,url"`
}

type Service interface {
	Get(context.Context) (CompanySettings, error)
	Upsert(context.Context, UpsertCompanyRequest) (CompanySettings, error)
}

var ErrNotFound = apperror.New(apperror.KindNotFound, "company_settings_not_found")
