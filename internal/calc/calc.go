// Package calc holds the derived-field formulas for jewelry trades and payments.
// Weights are in grams, touch/wastage/purity are percentages and rates are per
// kilogram unless pieces are counted.
package calc

import "github.com/shopspring/decimal"

// Scale is the number of decimal places kept on derived weights and amounts.
const Scale = 4

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// TotalGhat is the ghat allowance for a net weight at ghatPerKg grams per kilogram.
func TotalGhat(net, ghatPerKg decimal.Decimal) decimal.Decimal {
	return net.Mul(ghatPerKg).Div(thousand)
}

// TradeFine is the pure metal content of a trade line.
func TradeFine(net, totalGhat, touch, wastage decimal.Decimal) decimal.Decimal {
	return net.Add(totalGhat).Mul(touch.Add(wastage)).Div(hundred)
}

// TradeAmount prices by piece when pics is positive, otherwise by net weight.
func TradeAmount(pics int, rate, net decimal.Decimal) decimal.Decimal {
	if pics > 0 {
		return decimal.NewFromInt(int64(pics)).Mul(rate)
	}
	return net.Mul(rate).Div(thousand)
}

func PaymentFine(gross, purity decimal.Decimal) decimal.Decimal {
	return gross.Mul(purity).Div(hundred).Round(Scale)
}

// RateCutFine converts fine weight to currency at rate. The result is shown to
// the user but never fed into balances.
func RateCutFine(fine, rate decimal.Decimal) decimal.Decimal {
	return fine.Mul(rate).Div(thousand)
}

type TradeInput struct {
	NetWeight decimal.Decimal
	GhatPerKg decimal.Decimal
	Touch     decimal.Decimal
	Wastage   decimal.Decimal
	Pics      int
	Rate      decimal.Decimal
}

type TradeDerived struct {
	TotalGhat decimal.Decimal
	Fine      decimal.Decimal
	Amount    decimal.Decimal
}

// DeriveTrade computes the stored fields of a trade line, each rounded to
// Scale places. Fine is taken from the unrounded ghat.
func DeriveTrade(in TradeInput) TradeDerived {
	totalGhat := TotalGhat(in.NetWeight, in.GhatPerKg)
	return TradeDerived{
		TotalGhat: totalGhat.Round(Scale),
		Fine:      TradeFine(in.NetWeight, totalGhat, in.Touch, in.Wastage).Round(Scale),
		Amount:    TradeAmount(in.Pics, in.Rate, in.NetWeight).Round(Scale),
	}
}
