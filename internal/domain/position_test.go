package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(n int) time.Time {
	return time.Date(2024, time.January, n, 0, 0, 0, 0, time.UTC)
}

// created orders operations by insertion within the same day
var created = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

func newOp(kind OperationKind, qty, price, fees string, executed time.Time, seq int) *Operation {
	return &Operation{
		ID:         uuid.New(),
		Kind:       kind,
		Quantity:   dec(qty),
		UnitPrice:  dec(price),
		Fees:       dec(fees),
		ExecutedAt: executed,
		CreatedAt:  created.Add(time.Duration(seq) * time.Second),
	}
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func TestComputePosition_Scenarios(t *testing.T) {
	buy := newOp(OperationKindBuy, "10", "10.00", "0", day(1), 1)
	sell := newOp(OperationKindSell, "4", "15.00", "0", day(2), 2)
	oversell := newOp(OperationKindSell, "10", "20.00", "0", day(3), 3)

	t.Run("Scenario A: single buy", func(t *testing.T) {
		pos := ComputePosition([]*Operation{buy})
		assertDecimal(t, "10", pos.Quantity)
		assertDecimal(t, "100", pos.CostBasis)
		assertDecimal(t, "10", pos.AverageCost())
	})

	t.Run("Scenario B: partial sell reduces basis proportionally", func(t *testing.T) {
		pos := ComputePosition([]*Operation{buy, sell})
		assertDecimal(t, "6", pos.Quantity)
		assertDecimal(t, "60", pos.CostBasis)
		assertDecimal(t, "10", pos.AverageCost())
	})

	t.Run("Scenario C: selling more than held clamps to zero", func(t *testing.T) {
		pos := ComputePosition([]*Operation{buy, sell, oversell})
		assert.True(t, pos.Quantity.IsZero())
		assert.True(t, pos.CostBasis.IsZero())
		assert.True(t, pos.IsFlat())
	})
}

func TestComputePosition_FeesCapitalizedOnBuys(t *testing.T) {
	ops := []*Operation{
		newOp(OperationKindBuy, "10", "10", "5", day(1), 1),
		newOp(OperationKindSell, "5", "12", "3", day(2), 2),
	}

	pos := ComputePosition(ops)

	// 105 basis, half sold -> 52.5 remains, sell fees do not touch basis
	assertDecimal(t, "5", pos.Quantity)
	assertDecimal(t, "52.5", pos.CostBasis)
}

func TestComputePosition_SellWhileFlatIsNoop(t *testing.T) {
	ops := []*Operation{
		newOp(OperationKindSell, "3", "10", "0", day(1), 1),
		newOp(OperationKindBuy, "2", "10", "0", day(2), 2),
	}

	pos := ComputePosition(ops)

	assertDecimal(t, "2", pos.Quantity)
	assertDecimal(t, "20", pos.CostBasis)
}

func TestComputePosition_OrderSensitivity(t *testing.T) {
	t.Run("same-day buys commute", func(t *testing.T) {
		a := newOp(OperationKindBuy, "3", "10", "1", day(5), 1)
		b := newOp(OperationKindBuy, "7", "20", "2", day(5), 2)

		first := ComputePosition([]*Operation{a, b})

		a2 := *a
		b2 := *b
		a2.CreatedAt, b2.CreatedAt = b.CreatedAt, a.CreatedAt
		second := ComputePosition([]*Operation{&a2, &b2})

		assert.True(t, first.CostBasis.Equal(second.CostBasis))
		assert.True(t, first.Quantity.Equal(second.Quantity))
	})

	t.Run("same-day buy and sell depend on creation order", func(t *testing.T) {
		opening := newOp(OperationKindBuy, "10", "10", "0", day(1), 0)
		buy := newOp(OperationKindBuy, "10", "30", "0", day(5), 1)
		sell := newOp(OperationKindSell, "5", "25", "0", day(5), 2)

		buyFirst := ComputePosition([]*Operation{opening, buy, sell})
		// average 20 -> basis 400 - 100
		assertDecimal(t, "300", buyFirst.CostBasis)

		sellFirst := *sell
		sellFirst.CreatedAt = buy.CreatedAt.Add(-time.Second)
		sellFirstPos := ComputePosition([]*Operation{opening, buy, &sellFirst})
		// average 10 -> 100 - 50 + 300
		assertDecimal(t, "350", sellFirstPos.CostBasis)

		assertDecimal(t, "15", buyFirst.Quantity)
		assertDecimal(t, "15", sellFirstPos.Quantity)
	})

	t.Run("equal keys keep insertion order", func(t *testing.T) {
		opening := newOp(OperationKindBuy, "10", "10", "0", day(1), 0)
		buy := newOp(OperationKindBuy, "10", "30", "0", day(5), 1)
		sell := newOp(OperationKindSell, "5", "25", "0", day(5), 1)

		pos := ComputePosition([]*Operation{opening, sell, buy})

		assertDecimal(t, "350", pos.CostBasis)
	})
}

func TestComputePosition_Invariants(t *testing.T) {
	sequences := map[string][]*Operation{
		"empty": {},
		"round trip": {
			newOp(OperationKindBuy, "3", "33.33", "0.01", day(1), 1),
			newOp(OperationKindSell, "1", "40", "0", day(2), 2),
			newOp(OperationKindSell, "2", "40", "0", day(3), 3),
		},
		"thirds": {
			newOp(OperationKindBuy, "3", "10", "0", day(1), 1),
			newOp(OperationKindSell, "1", "10", "0", day(2), 2),
			newOp(OperationKindSell, "1", "10", "0", day(3), 3),
			newOp(OperationKindSell, "1", "10", "0", day(4), 4),
		},
		"repeated oversell": {
			newOp(OperationKindBuy, "1", "100", "1", day(1), 1),
			newOp(OperationKindSell, "5", "100", "0", day(2), 2),
			newOp(OperationKindSell, "5", "100", "0", day(3), 3),
			newOp(OperationKindBuy, "0.5", "80", "0", day(4), 4),
		},
	}

	for name, ops := range sequences {
		t.Run(name, func(t *testing.T) {
			pos := ComputePosition(ops)

			assert.False(t, pos.Quantity.IsNegative(), "quantity must be non-negative")
			assert.False(t, pos.CostBasis.IsNegative(), "cost basis must be non-negative")
			if pos.Quantity.IsZero() {
				assert.True(t, pos.CostBasis.IsZero(), "cost basis must be zero when flat")
			}

			again := ComputePosition(ops)
			assert.True(t, pos.Quantity.Equal(again.Quantity))
			assert.True(t, pos.CostBasis.Equal(again.CostBasis))
		})
	}
}

func TestComputePosition_DoesNotReorderInput(t *testing.T) {
	late := newOp(OperationKindBuy, "1", "10", "0", day(9), 1)
	early := newOp(OperationKindBuy, "1", "10", "0", day(1), 2)
	ops := []*Operation{late, early}

	ComputePosition(ops)

	assert.Same(t, late, ops[0])
	assert.Same(t, early, ops[1])
}

func TestComputePositionUntil(t *testing.T) {
	ops := []*Operation{
		newOp(OperationKindBuy, "10", "10", "0", day(1), 1),
		newOp(OperationKindBuy, "10", "20", "0", day(10), 2),
		newOp(OperationKindSell, "5", "20", "0", day(20), 3),
	}

	tests := []struct {
		name      string
		before    time.Time
		quantity  string
		costBasis string
	}{
		{"before any operation", day(1), "0", "0"},
		{"excludes operations on the boundary day", day(10), "10", "100"},
		{"includes earlier operations", day(11), "20", "300"},
		{"everything", day(31), "15", "225"},
		{"time of day is ignored", day(10).Add(15 * time.Hour), "10", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := ComputePositionUntil(ops, tt.before)
			assertDecimal(t, tt.quantity, pos.Quantity)
			assertDecimal(t, tt.costBasis, pos.CostBasis)
		})
	}
}
