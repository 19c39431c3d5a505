package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsDuplicateKeyErr(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: items.tenant_id, items.code")))
	assert.True(t, IsDuplicateKeyErr(errors.New("Error 1062 (23000): Duplicate entry")))
}

func TestTranslateError(t *testing.T) {
	missing := apperror.New(apperror.KindNotFound, "sale_not_found")

	assert.Nil(t, TranslateError(nil, missing))
	assert.Same(t, missing, TranslateError(gorm.ErrRecordNotFound, missing))
	assert.True(t, errors.Is(TranslateError(gorm.ErrRecordNotFound, nil), apperror.ErrNotFound))
	assert.True(t, errors.Is(TranslateError(gorm.ErrDuplicatedKey, nil), apperror.ErrConflict))

	cause := errors.New("connection refused")
	err := TranslateError(cause, nil)
	assert.True(t, errors.Is(err, apperror.ErrInternal))
	assert.True(t, errors.Is(err, cause))

	denied := apperror.New(apperror.KindAccessDenied, "customer_access_denied")
	assert.Same(t, denied, TranslateError(denied, missing))
}
