package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	paymentdomain "github.com/smallbiznis/bullionbook/internal/payment/domain"
)

// SourceType is the kind of record that moves a customer balance.
type SourceType string

const (
	SourceTypeSale     SourceType = "sale"
	SourceTypePurchase SourceType = "purchase"
	SourceTypePayment  SourceType = "payment"
	SourceTypeReceipt  SourceType = "receipt"
)

// PaymentSource maps a payment direction onto its ledger source.
func PaymentSource(t paymentdomain.TransactionType) SourceType {
	if t == paymentdomain.TransactionTypeReceipt {
		return SourceTypeReceipt
	}
	return SourceTypePayment
}

type Operation string

const (
	OperationCreate Operation = "create"
	OperationDelete Operation = "delete"
)

// Delta is a signed change to both running balances.
type Delta struct {
	Amount decimal.Decimal `json:"amount"`
	Fine   decimal.Decimal `json:"fine"`
}

func (d Delta) Neg() Delta {
	return Delta{Amount: d.Amount.Neg(), Fine: d.Fine.Neg()}
}

func (d Delta) Add(o Delta) Delta {
	return Delta{Amount: d.Amount.Add(o.Amount), Fine: d.Fine.Add(o.Fine)}
}

// DeltaFor returns the balance effect of op on a record of the given source.
// Sales and receipts increase what the customer owes; purchases and payments
// decrease it. Deleting a record applies the exact inverse.
func DeltaFor(source SourceType, op Operation, amount, fine decimal.Decimal) (Delta, error) {
	var d Delta
	switch source {
	case SourceTypeSale, SourceTypeReceipt:
		d = Delta{Amount: amount, Fine: fine}
	case SourceTypePurchase, SourceTypePayment:
		d = Delta{Amount: amount.Neg(), Fine: fine.Neg()}
	default:
		return Delta{}, ErrInvalidSourceType
	}

	switch op {
	case OperationCreate:
		return d, nil
	case OperationDelete:
		return d.Neg(), nil
	default:
		return Delta{}, ErrInvalidOperation
	}
}

// Balance is a customer's closing position after a mutation.
type Balance struct {
	CustomerID    snowflake.ID    `json:"customer_id"`
	ClosingAmount decimal.Decimal `json:"closing_amount"`
	ClosingFine   decimal.Decimal `json:"closing_fine"`
}

// Reconciliation compares stored closing balances against opening balances
// plus the deltas of every live record.
type Reconciliation struct {
	CustomerID     snowflake.ID    `json:"customer_id"`
	OpeningAmount  decimal.Decimal `json:"opening_amount"`
	OpeningFine    decimal.Decimal `json:"opening_fine"`
	RecordedAmount decimal.Decimal `json:"recorded_amount"`
	RecordedFine   decimal.Decimal `json:"recorded_fine"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	ExpectedFine   decimal.Decimal `json:"expected_fine"`
	DriftAmount    decimal.Decimal `json:"drift_amount"`
	DriftFine      decimal.Decimal `json:"drift_fine"`
	InSync         bool            `json:"in_sync"`
}
