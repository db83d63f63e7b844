package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fixedIncomeClasses are the asset classes valued by growth projection
var fixedIncomeClasses = map[string]bool{
	"cdb":     true,
	"cdi":     true,
	"lci":     true,
	"lca":     true,
	"tesouro": true,
}

// Holding is a single trackable asset or manual value entry in a user's portfolio.
// Holdings are managed outside the engine; the engine only reads them.
type Holding struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Name       string
	Ticker     *string
	AssetClass string

	// Manual baseline, used only when the holding has no operations
	Quantity *decimal.Decimal
	Value    *decimal.Decimal

	AnnualRate                 *decimal.Decimal // percent per year
	RegisterDate               *time.Time
	EstimatedValueOnCreateDate *decimal.Decimal
}

// HasTicker reports whether the holding is priced by the market
func (h *Holding) HasTicker() bool {
	return h.Ticker != nil && strings.TrimSpace(*h.Ticker) != ""
}

// TickerSymbol returns the trimmed ticker, or "" when absent
func (h *Holding) TickerSymbol() string {
	if h.Ticker == nil {
		return ""
	}
	return strings.TrimSpace(*h.Ticker)
}

// IsFixedIncome reports whether the asset class selects the growth projection path
func (h *Holding) IsFixedIncome() bool {
	return fixedIncomeClasses[strings.ToLower(strings.TrimSpace(h.AssetClass))]
}

// ManualQuantity is the recorded quantity, defaulting to 1
func (h *Holding) ManualQuantity() decimal.Decimal {
	if h.Quantity != nil && h.Quantity.GreaterThan(decimal.Zero) {
		return *h.Quantity
	}
	return decimal.NewFromInt(1)
}

// EstimatedValue returns the estimate recorded at creation, or zero
func (h *Holding) EstimatedValue() decimal.Decimal {
	if h.EstimatedValueOnCreateDate == nil {
		return decimal.Zero
	}
	return *h.EstimatedValueOnCreateDate
}

// BaselineAmount resolves the manually-entered invested amount.
// Logic (first positive wins):
//  1. value * quantity
//  2. value
//  3. estimated_value_on_create_date
//
// The second return value tells whether the estimate was used.
func (h *Holding) BaselineAmount() (decimal.Decimal, bool) {
	if h.Value != nil && h.Value.GreaterThan(decimal.Zero) {
		if h.Quantity != nil && h.Quantity.GreaterThan(decimal.Zero) {
			return h.Value.Mul(*h.Quantity), false
		}
		return *h.Value, false
	}
	if est := h.EstimatedValue(); est.GreaterThan(decimal.Zero) {
		return est, true
	}
	return decimal.Zero, false
}
