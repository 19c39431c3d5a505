package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errCustomerMissing = New(KindNotFound, "customer_not_found")

func TestSentinelMatchesKind(t *testing.T) {
	err := fmt.Errorf("load customer: %w", errCustomerMissing)

	assert.True(t, errors.Is(err, errCustomerMissing))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrAccessDenied))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "customer_not_found", CodeOf(err))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindInternal, "storage_failure", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrInternal))
	assert.Equal(t, "storage_failure: connection reset", err.Error())
}

func TestKindOfUntagged(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, KindUnauthenticated, KindOf(fmt.Errorf("resolve: %w", ErrUnauthenticated)))
}

func TestValidationField(t *testing.T) {
	err := Validation("customer_id", "invalid_customer_id")
	assert.Equal(t, "customer_id", FieldOf(err))
	assert.True(t, errors.Is(err, ErrValidation))

	assert.Equal(t, "date", FieldOf(New(KindValidation, "invalid_date")))
}
