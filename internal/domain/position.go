package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Position is the derived quantity and cost basis of a holding.
// It is recomputed from the operation log on every query.
type Position struct {
	Quantity  decimal.Decimal
	CostBasis decimal.Decimal
}

// AverageCost is cost basis per unit, zero when flat
func (p Position) AverageCost() decimal.Decimal {
	if p.Quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return p.CostBasis.Div(p.Quantity)
}

// IsFlat reports whether nothing is held
func (p Position) IsFlat() bool {
	return p.Quantity.LessThanOrEqual(decimal.Zero)
}

// Apply replays one operation onto the position using weighted-average cost.
// Logic:
//   - buy: quantity += q; cost_basis += q * price + fees (fees are capitalized)
//   - sell while flat: no-op, short positions are not represented
//   - sell: cost_basis -= average_cost * min(q, quantity); quantity -= q
//   - quantity <= 0 afterwards clamps both fields to exactly zero
func (p *Position) Apply(op *Operation) {
	switch op.Kind {
	case OperationKindBuy:
		p.Quantity = p.Quantity.Add(op.Quantity)
		p.CostBasis = p.CostBasis.Add(op.Amount()).Add(op.Fees)
	case OperationKindSell:
		if p.Quantity.LessThanOrEqual(decimal.Zero) {
			return
		}
		reduce := decimal.Min(op.Quantity, p.Quantity)
		averageCost := p.CostBasis.Div(p.Quantity)
		p.CostBasis = p.CostBasis.Sub(averageCost.Mul(reduce))
		p.Quantity = p.Quantity.Sub(op.Quantity)
		if p.Quantity.LessThanOrEqual(decimal.Zero) {
			p.Quantity = decimal.Zero
			p.CostBasis = decimal.Zero
		}
	}
}

// SortChronologically returns a copy of ops ordered by (executed_at asc, created_at asc).
// The sort is stable, so operations with equal keys keep their insertion order.
func SortChronologically(ops []*Operation) []*Operation {
	sorted := make([]*Operation, len(ops))
	copy(sorted, ops)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.ExecutedAt.Equal(b.ExecutedAt) {
			return a.ExecutedAt.Before(b.ExecutedAt)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return sorted
}

// ComputePosition replays every operation in chronological order
func ComputePosition(ops []*Operation) Position {
	pos := Position{}
	for _, op := range SortChronologically(ops) {
		pos.Apply(op)
	}
	return pos
}

// ComputePositionUntil replays only operations executed strictly before the given date
func ComputePositionUntil(ops []*Operation, before time.Time) Position {
	before = Day(before)
	pos := Position{}
	for _, op := range SortChronologically(ops) {
		if !op.ExecutedAt.Before(before) {
			// sorted, nothing later can qualify
			break
		}
		pos.Apply(op)
	}
	return pos
}
