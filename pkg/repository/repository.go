package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bullionbook/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is tenant-scoped CRUD over a single table. Every method takes the
// tenant resolved for the request; rows owned by another tenant are reported as
// access denied and never returned.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Insert(ctx context.Context, tenantID snowflake.ID, resource *T) error
	Get(ctx context.Context, tenantID, id snowflake.ID, opts ...option.QueryOption) (*T, error)
	First(ctx context.Context, tenantID snowflake.ID, opts ...option.QueryOption) (*T, error)
	List(ctx context.Context, tenantID snowflake.ID, opts ...option.QueryOption) ([]*T, error)
	Update(ctx context.Context, tenantID, id snowflake.ID, patch map[string]any) error
	Delete(ctx context.Context, tenantID, id snowflake.ID) error
	Count(ctx context.Context, tenantID snowflake.ID, opts ...option.QueryOption) (int64, error)
}

// TenantScoped is satisfied by pointers to models that carry a tenant column.
type TenantScoped[T any] interface {
	*T
	SetTenantID(snowflake.ID)
}

// AccessDeniedRecorder receives cross-tenant access attempts.
type AccessDeniedRecorder interface {
	RecordAccessDenied(ctx context.Context, entity string)
}
