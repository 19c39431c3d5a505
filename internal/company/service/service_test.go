package service

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bullionbook/internal/company/domain"
	"github.com/smallbiznis/bullionbook/internal/company/repository"
	"github.com/smallbiznis/bullionbook/internal/identity"
	"github.com/smallbiznis/bullionbook/internal/testutil"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const tenantA, tenantB snowflake.ID = 101, 202

func newService(t *testing.T) domain.Service {
	t.Helper()
	conn := testutil.OpenDB(t)
	return New(Params{
		Log:      zap.NewNop(),
		GenID:    testutil.Node(t),
		Repo:     repository.Provide(repository.Params{DB: conn, Log: zap.NewNop()}),
		Identity: identity.NewContextResolver(),
	})
}

func TestUpsertKeepsOneRowPerTenant(t *testing.T) {
	svc := newService(t)
	ctx := testutil.Ctx(tenantA)

	_, err := svc.Get(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	first, err := svc.Upsert(ctx, domain.UpsertCompanyRequest{CompanyName: "Shree Gold"})
	require.NoError(t, err)

	phone := "022-555-0101"
	second, err := svc.Upsert(ctx, domain.UpsertCompanyRequest{CompanyName: "Shree Gold & Silver", Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Shree Gold & Silver", second.CompanyName)
	require.NotNil(t, second.Phone)
	assert.Equal(t, phone, *second.Phone)

	_, err = svc.Get(testutil.Ctx(tenantB))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpsertValidation(t *testing.T) {
	svc := newService(t)

	email := "not-an-email"
	_, err := svc.Upsert(testutil.Ctx(tenantA), domain.UpsertCompanyRequest{CompanyName: "Shree", Email: &email})
	assert.Equal(t, "email", apperror.FieldOf(err))

	_, err = svc.Upsert(testutil.Ctx(tenantA), domain.UpsertCompanyRequest{})
	assert.Equal(t, "company_name", apperror.FieldOf(err))

	_, err = svc.Upsert(testutil.Ctx(0), domain.UpsertCompanyRequest{CompanyName: "Shree"})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}
