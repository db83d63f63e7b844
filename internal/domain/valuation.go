package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationSource is the strategy that priced a holding
type ValuationSource string

const (
	SourceMarketPrice           ValuationSource = "market_price"
	SourceFallbackCostBasis     ValuationSource = "fallback_cost_basis"
	SourceFallbackEstimated     ValuationSource = "fallback_estimated_on_create_date"
	SourceFixedIncomeProjection ValuationSource = "fixed_income_projection"
	SourceManualValue           ValuationSource = "manual_value"
)

const (
	daysPerYear       = 365
	growthPrecision   = 16
	percentMultiplier = 100
)

var hundred = decimal.NewFromInt(percentMultiplier)

// ValuationInput bundles what the resolver needs for one holding
type ValuationInput struct {
	Holding  *Holding
	Position *Position // nil when the holding has no operations
	Price    PriceLookup
	AsOf     time.Time
}

// Valuation is the resolved value of one holding
type Valuation struct {
	Source            ValuationSource
	Quantity          decimal.Decimal
	CurrentValue      decimal.Decimal
	InvestedAmount    decimal.Decimal
	UnitPrice         decimal.Decimal
	ProfitLossAmount  decimal.Decimal
	ProfitLossPercent decimal.Decimal
}

// ResolveValuation values a holding using a strict precedence, stopping at the first branch that applies:
//  1. Ticker present: market price, then ledger cost basis, then the estimate on create date, then zero
//  2. Fixed-income class with an annual rate: invested amount grown by (1 + rate/100)^(days/365)
//  3. Otherwise: the invested amount
//
// Outside the ticker branch the invested amount is the ledger cost basis when the holding has
// operations, else the manual baseline.
func ResolveValuation(in ValuationInput) Valuation {
	h := in.Holding
	lookup := in.Price
	if lookup == nil {
		lookup = NoPrices
	}
	quantity := effectiveQuantity(h, in.Position)

	var current, invested decimal.Decimal
	var source ValuationSource

	switch {
	case h.HasTicker():
		current, invested, source = resolveMarket(h, in.Position, quantity, lookup)
	case h.IsFixedIncome() && h.AnnualRate != nil:
		invested, _ = manualInvested(h, in.Position)
		days := 0
		if h.RegisterDate != nil {
			days = max(DaysBetween(*h.RegisterDate, in.AsOf), 0)
		}
		current = invested.Mul(GrowthFactor(*h.AnnualRate, days))
		source = SourceFixedIncomeProjection
	default:
		var usedEstimate bool
		invested, usedEstimate = manualInvested(h, in.Position)
		source = SourceManualValue
		if invested.GreaterThan(decimal.Zero) {
			current = invested
			if usedEstimate {
				source = SourceFallbackEstimated
			}
		}
	}

	return newValuation(source, quantity, current, invested)
}

// resolveMarket is the ticker branch of ResolveValuation
func resolveMarket(h *Holding, pos *Position, quantity decimal.Decimal, lookup PriceLookup) (decimal.Decimal, decimal.Decimal, ValuationSource) {
	ledgerBasis := decimal.Zero
	if pos != nil {
		ledgerBasis = pos.CostBasis
	}
	estimated := h.EstimatedValue()

	if price, ok := lookup(h.TickerSymbol()); ok && price.GreaterThan(decimal.Zero) {
		invested := estimated
		if pos != nil && ledgerBasis.GreaterThan(decimal.Zero) {
			invested = ledgerBasis
		}
		return price.Mul(quantity), invested, SourceMarketPrice
	}
	if ledgerBasis.GreaterThan(decimal.Zero) {
		return ledgerBasis, ledgerBasis, SourceFallbackCostBasis
	}
	if estimated.GreaterThan(decimal.Zero) {
		return estimated, estimated, SourceFallbackEstimated
	}
	return decimal.Zero, decimal.Zero, SourceManualValue
}

// manualInvested is the ledger cost basis when operations exist, else the manual baseline.
// The manual figures never mix with a ledger position.
func manualInvested(h *Holding, pos *Position) (decimal.Decimal, bool) {
	if pos != nil {
		return pos.CostBasis, false
	}
	return h.BaselineAmount()
}

// effectiveQuantity is the ledger quantity when operations exist, else the manual quantity (default 1)
func effectiveQuantity(h *Holding, pos *Position) decimal.Decimal {
	if pos != nil {
		return pos.Quantity
	}
	return h.ManualQuantity()
}

// GrowthFactor returns (1 + annualRate/100) ^ (days/365).
// This is day-fraction compounding, not a settlement day-count convention.
func GrowthFactor(annualRate decimal.Decimal, days int) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if days <= 0 {
		return one
	}
	base := one.Add(annualRate.Div(hundred))
	if base.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if days%daysPerYear == 0 {
		return base.Pow(decimal.NewFromInt(int64(days / daysPerYear)))
	}

	ln, err := base.Ln(growthPrecision)
	if err != nil {
		return one
	}
	exponent := decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(daysPerYear))
	factor, err := ln.Mul(exponent).ExpTaylor(growthPrecision)
	if err != nil {
		return one
	}
	return factor
}

func newValuation(source ValuationSource, quantity, current, invested decimal.Decimal) Valuation {
	v := Valuation{
		Source:           source,
		Quantity:         quantity,
		CurrentValue:     current,
		InvestedAmount:   invested,
		ProfitLossAmount: current.Sub(invested),
	}
	if quantity.GreaterThan(decimal.Zero) {
		v.UnitPrice = current.Div(quantity)
	}
	v.ProfitLossPercent = ProfitLossPercent(v.ProfitLossAmount, invested)
	return v
}

// ProfitLossPercent is profit / invested * 100, zero when nothing was invested
func ProfitLossPercent(profit, invested decimal.Decimal) decimal.Decimal {
	if invested.IsZero() {
		return decimal.Zero
	}
	return profit.Div(invested).Mul(hundred)
}

// ValuationTotals is the portfolio-level sum of holding valuations
type ValuationTotals struct {
	Holdings          int
	CurrentValue      decimal.Decimal
	InvestedAmount    decimal.Decimal
	ProfitLossAmount  decimal.Decimal
	ProfitLossPercent decimal.Decimal
}

// SumValuations adds valuations up and recomputes the percent from the totals,
// never averaging per-holding percentages
func SumValuations(vals []Valuation) ValuationTotals {
	t := ValuationTotals{Holdings: len(vals)}
	for _, v := range vals {
		t.CurrentValue = t.CurrentValue.Add(v.CurrentValue)
		t.InvestedAmount = t.InvestedAmount.Add(v.InvestedAmount)
	}
	t.ProfitLossAmount = t.CurrentValue.Sub(t.InvestedAmount)
	t.ProfitLossPercent = ProfitLossPercent(t.ProfitLossAmount, t.InvestedAmount)
	return t
}
