package domain

import "github.com/shopspring/decimal"

const moneyPlaces = 2

// RoundMoney quantizes a monetary amount to cents with banker's rounding
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(moneyPlaces)
}

// Rounded returns a copy with monetary fields quantized; quantities are kept as is
func (s Summary) Rounded() Summary {
	s.GrossBuyAmount = RoundMoney(s.GrossBuyAmount)
	s.GrossSellAmount = RoundMoney(s.GrossSellAmount)
	s.TotalFees = RoundMoney(s.TotalFees)
	s.AverageBuyPrice = RoundMoney(s.AverageBuyPrice)
	return s
}

// Rounded returns a copy with monetary fields quantized
func (a InvestedAmount) Rounded() InvestedAmount {
	a.BuyAmount = RoundMoney(a.BuyAmount)
	a.SellAmount = RoundMoney(a.SellAmount)
	a.NetInvestedAmount = RoundMoney(a.NetInvestedAmount)
	return a
}

// Rounded returns a copy with monetary fields quantized; quantity is kept as is
func (v Valuation) Rounded() Valuation {
	v.CurrentValue = RoundMoney(v.CurrentValue)
	v.InvestedAmount = RoundMoney(v.InvestedAmount)
	v.UnitPrice = RoundMoney(v.UnitPrice)
	v.ProfitLossAmount = RoundMoney(v.ProfitLossAmount)
	v.ProfitLossPercent = RoundMoney(v.ProfitLossPercent)
	return v
}

// Rounded returns a copy with monetary fields quantized
func (t ValuationTotals) Rounded() ValuationTotals {
	t.CurrentValue = RoundMoney(t.CurrentValue)
	t.InvestedAmount = RoundMoney(t.InvestedAmount)
	t.ProfitLossAmount = RoundMoney(t.ProfitLossAmount)
	t.ProfitLossPercent = RoundMoney(t.ProfitLossPercent)
	return t
}
