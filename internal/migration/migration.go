package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	companydomain "github.com/smallbiznis/bullionbook/internal/company/domain"
	customerdomain "github.com/smallbiznis/bullionbook/internal/customer/domain"
	expensedomain "github.com/smallbiznis/bullionbook/internal/expense/domain"
	invoicedomain "github.com/smallbiznis/bullionbook/internal/invoiceno/domain"
	itemdomain "github.com/smallbiznis/bullionbook/internal/item/domain"
	paymentdomain "github.com/smallbiznis/bullionbook/internal/payment/domain"
	tradedomain "github.com/smallbiznis/bullionbook/internal/trade/domain"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Models lists every table, in dependency order, for dialects that are set up
// through AutoMigrate instead of the SQL files.
func Models() []any {
	return []any{
		&customerdomain.Customer{},
		&itemdomain.Item{},
		&tradedomain.Sale{},
		&tradedomain.Purchase{},
		&paymentdomain.Payment{},
		&expensedomain.Expense{},
		&companydomain.CompanySettings{},
		&invoicedomain.Sequence{},
	}
}

// Run brings the schema up to date. Postgres gets the embedded SQL migrations,
// including row level security; mysql and sqlite are auto-migrated.
func Run(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if conn.Dialector.Name() != "postgres" {
		return conn.AutoMigrate(Models()...)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	source, err := iofs.New(embeddedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	// migrator.Close would close the shared *sql.DB.
	return nil
}
