// Package testutil wires the ledger core against an in-memory SQLite database
// for package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bullionbook/internal/config"
	customerdomain "github.com/smallbiznis/bullionbook/internal/customer/domain"
	"github.com/smallbiznis/bullionbook/internal/identity"
	invoicedomain "github.com/smallbiznis/bullionbook/internal/invoiceno/domain"
	invoicerepo "github.com/smallbiznis/bullionbook/internal/invoiceno/repository"
	invoicesvc "github.com/smallbiznis/bullionbook/internal/invoiceno/service"
	ledgerdomain "github.com/smallbiznis/bullionbook/internal/ledger/domain"
	"github.com/smallbiznis/bullionbook/internal/ledger/lock"
	ledgerrepo "github.com/smallbiznis/bullionbook/internal/ledger/repository"
	ledgersvc "github.com/smallbiznis/bullionbook/internal/ledger/service"
	"github.com/smallbiznis/bullionbook/internal/migration"
	"github.com/smallbiznis/bullionbook/pkg/tenantctx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenDB returns a migrated private in-memory database. A single connection
// keeps every statement on the same database.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migration.Run(conn))
	return conn
}

func Node(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

// Ctx returns a request context resolved to tenantID.
func Ctx(tenantID snowflake.ID) context.Context {
	return tenantctx.WithTenantID(context.Background(), tenantID)
}

// Stack is the shared collaborators of the transaction services.
type Stack struct {
	DB       *gorm.DB
	Node     *snowflake.Node
	Log      *zap.Logger
	Identity identity.Resolver
	Ledger   ledgerdomain.Service
	Invoices invoicedomain.Service
}

func NewStack(t *testing.T) *Stack {
	t.Helper()
	conn := OpenDB(t)
	log := zap.NewNop()
	resolver := identity.NewContextResolver()

	ledger := ledgersvc.NewService(ledgersvc.Params{
		DB:       conn,
		Log:      log,
		Repo:     ledgerrepo.Provide(ledgerrepo.Params{DB: conn, Log: log}),
		Locker:   lock.NewLocal(),
		Identity: resolver,
	})
	invoices := invoicesvc.New(invoicesvc.Params{
		Log:    log,
		Repo:   invoicerepo.Provide(),
		Config: config.NewStaticInvoicingConfig(config.DefaultInvoicingConfig()),
	})

	return &Stack{
		DB:       conn,
		Node:     Node(t),
		Log:      log,
		Identity: resolver,
		Ledger:   ledger,
		Invoices: invoices,
	}
}

// SeedCustomer inserts a customer whose closing balances equal its opening ones.
func (s *Stack) SeedCustomer(t *testing.T, tenantID snowflake.ID, name string, openingAmount, openingFine string) customerdomain.Customer {
	t.Helper()
	c := customerdomain.Customer{
		ID:            s.Node.Generate(),
		TenantID:      tenantID,
		Name:          name,
		MobileNo:      "9800000000",
		OpeningAmount: decimal.RequireFromString(openingAmount),
		OpeningFine:   decimal.RequireFromString(openingFine),
		ClosingAmount: decimal.RequireFromString(openingAmount),
		ClosingFine:   decimal.RequireFromString(openingFine),
	}
	require.NoError(t, s.DB.Create(&c).Error)
	return c
}

// Balance reads the stored closing balances of a customer.
func (s *Stack) Balance(t *testing.T, customerID snowflake.ID) (decimal.Decimal, decimal.Decimal) {
	t.Helper()
	var c customerdomain.Customer
	require.NoError(t, s.DB.Where("id = ?", customerID).Take(&c).Error)
	return c.ClosingAmount, c.ClosingFine
}
