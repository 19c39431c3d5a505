package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bullionbook/internal/analytics"
	"github.com/smallbiznis/bullionbook/internal/clock"
	"github.com/smallbiznis/bullionbook/internal/company"
	"github.com/smallbiznis/bullionbook/internal/config"
	"github.com/smallbiznis/bullionbook/internal/customer"
	"github.com/smallbiznis/bullionbook/internal/expense"
	"github.com/smallbiznis/bullionbook/internal/identity"
	"github.com/smallbiznis/bullionbook/internal/invoiceno"
	"github.com/smallbiznis/bullionbook/internal/item"
	"github.com/smallbiznis/bullionbook/internal/ledger"
	"github.com/smallbiznis/bullionbook/internal/migration"
	"github.com/smallbiznis/bullionbook/internal/observability"
	"github.com/smallbiznis/bullionbook/internal/payment"
	"github.com/smallbiznis/bullionbook/internal/ratelimit"
	"github.com/smallbiznis/bullionbook/internal/server"
	"github.com/smallbiznis/bullionbook/internal/trade"
	"github.com/smallbiznis/bullionbook/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		identity.Module,
		ratelimit.Module,

		// Ledger core
		invoiceno.Module,
		ledger.Module,

		// Domains
		customer.Module,
		item.Module,
		trade.Module,
		payment.Module,
		expense.Module,
		company.Module,
		analytics.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
