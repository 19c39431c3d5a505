package identity

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"github.com/smallbiznis/bullionbook/pkg/tenantctx"
)

var ErrUnauthenticated = apperror.New(apperror.KindUnauthenticated, "unauthenticated")

// Resolver yields the tenant acting on the current request.
type Resolver interface {
	CurrentTenantID(ctx context.Context) (snowflake.ID, error)
}

// ContextResolver reads the tenant placed on the request context by the
// transport layer.
type ContextResolver struct{}

func NewContextResolver() Resolver {
	return ContextResolver{}
}

func (ContextResolver) CurrentTenantID(ctx context.Context) (snowflake.ID, error) {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return 0, ErrUnauthenticated
	}
	return tenantID, nil
}
