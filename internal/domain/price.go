package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSeries maps YYYY-MM-DD to a daily closing price. Missing days are simply absent.
type PriceSeries map[string]decimal.Decimal

// At returns the price for the calendar date of t
func (s PriceSeries) At(t time.Time) (decimal.Decimal, bool) {
	p, ok := s[DateKey(t)]
	return p, ok
}

// Set records a price for the calendar date of t
func (s PriceSeries) Set(t time.Time, price decimal.Decimal) {
	s[DateKey(t)] = price
}

// PriceLookup answers "what is the price of ticker", ok=false meaning no price.
// Valuation code receives prices only through this function.
type PriceLookup func(ticker string) (decimal.Decimal, bool)

// NoPrices is a PriceLookup that never has a price
func NoPrices(string) (decimal.Decimal, bool) {
	return decimal.Zero, false
}
