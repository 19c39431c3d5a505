package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/bullionbook/internal/customer/domain"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"gorm.io/gorm"
)

// WriteFunc persists or removes the financial record inside tx and returns the
// delta to apply to the customer. Returning an error rolls back both halves.
type WriteFunc func(ctx context.Context, tx *gorm.DB) (Delta, error)

// GuardFunc runs inside a customer's locked transaction. Returning an error
// rolls the transaction back.
type GuardFunc func(ctx context.Context, tx *gorm.DB, customer *customerdomain.Customer) error

type Mutation struct {
	Source    SourceType
	Operation Operation
	Write     WriteFunc
}

// Locker serializes mutations per key across goroutines or processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type Repository interface {
	LockCustomer(ctx context.Context, tx *gorm.DB, tenantID, customerID snowflake.ID) (*customerdomain.Customer, error)
	WriteBalance(ctx context.Context, tx *gorm.DB, tenantID, customerID snowflake.ID, balance Balance, now time.Time) error
	SumDeltas(ctx context.Context, tx *gorm.DB, tenantID, customerID snowflake.ID) (Delta, error)
}

type Service interface {
	// Apply runs m.Write and the balance update as one transaction under the
	// customer's lock.
	Apply(ctx context.Context, tenantID, customerID snowflake.ID, m Mutation) (Balance, error)
	// Locked runs fn in one transaction under the same customer lock Apply
	// takes, without touching the balance.
	Locked(ctx context.Context, tenantID, customerID snowflake.ID, fn GuardFunc) error
	Reconcile(ctx context.Context, customerID snowflake.ID) (Reconciliation, error)
	Rebuild(ctx context.Context, customerID snowflake.ID) (Reconciliation, error)
}

var (
	ErrInvalidSourceType = apperror.New(apperror.KindInternal, "invalid_ledger_source_type")
	ErrInvalidOperation  = apperror.New(apperror.KindInternal, "invalid_ledger_operation")
	ErrMissingWrite      = apperror.New(apperror.KindInternal, "ledger_mutation_without_write")
	ErrCommitUncertain   = apperror.New(apperror.KindPartialMutation, "ledger_commit_uncertain")
)
