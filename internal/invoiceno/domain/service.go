package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"gorm.io/gorm"
)

type Repository interface {
	Increment(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID, kind Kind, now time.Time) (int64, error)
}

// Service allocates invoice numbers. Next must run inside the transaction that
// inserts the numbered record so a rolled back insert gives its number back.
type Service interface {
	Next(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID, kind Kind, issuedOn time.Time) (string, error)
}

var (
	ErrInvalidKind       = apperror.Validation("kind", "invalid_invoice_kind")
	ErrTransactionNeeded = apperror.New(apperror.KindInternal, "invoice_number_requires_transaction")
)
