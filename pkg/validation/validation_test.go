package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name   string          `json:"name" validate:"required"`
	Kind   string          `json:"kind" validate:"oneof=cash bank"`
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
}

func TestStructNamesJSONField(t *testing.T) {
	err := Struct(sample{Kind: "cash"})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	assert.Equal(t, "name", apperror.FieldOf(err))

	err = Struct(sample{Name: "x", Kind: "gold"})
	assert.Equal(t, "kind", apperror.FieldOf(err))
}

func TestStructDecimalBounds(t *testing.T) {
	err := Struct(sample{Name: "x", Kind: "bank", Amount: decimal.NewFromInt(-1)})
	assert.Equal(t, "amount", apperror.FieldOf(err))

	assert.NoError(t, Struct(sample{Name: "x", Kind: "bank", Amount: decimal.NewFromInt(5)}))
}
