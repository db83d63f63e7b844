package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary holds order-independent aggregate statistics over a holding's operations.
// It answers "what happened overall", unlike Position which answers "what is held now".
type Summary struct {
	TotalOperations  int
	BuyOperations    int
	SellOperations   int
	BuyQuantity      decimal.Decimal
	SellQuantity     decimal.Decimal
	NetQuantity      decimal.Decimal
	GrossBuyAmount   decimal.Decimal
	GrossSellAmount  decimal.Decimal
	TotalFees        decimal.Decimal
	AverageBuyPrice  decimal.Decimal
	FirstOperationAt *time.Time
	LastOperationAt  *time.Time
}

// Summarize partitions operations into buys and sells and aggregates them
func Summarize(ops []*Operation) Summary {
	s := Summary{}
	for _, op := range ops {
		s.TotalOperations++
		s.TotalFees = s.TotalFees.Add(op.Fees)

		switch op.Kind {
		case OperationKindBuy:
			s.BuyOperations++
			s.BuyQuantity = s.BuyQuantity.Add(op.Quantity)
			s.GrossBuyAmount = s.GrossBuyAmount.Add(op.Amount())
		case OperationKindSell:
			s.SellOperations++
			s.SellQuantity = s.SellQuantity.Add(op.Quantity)
			s.GrossSellAmount = s.GrossSellAmount.Add(op.Amount())
		}

		executed := op.ExecutedAt
		if s.FirstOperationAt == nil || executed.Before(*s.FirstOperationAt) {
			s.FirstOperationAt = &executed
		}
		if s.LastOperationAt == nil || executed.After(*s.LastOperationAt) {
			s.LastOperationAt = &executed
		}
	}

	s.NetQuantity = s.BuyQuantity.Sub(s.SellQuantity)
	if s.BuyQuantity.GreaterThan(decimal.Zero) {
		s.AverageBuyPrice = s.GrossBuyAmount.Div(s.BuyQuantity)
	}
	return s
}

// InvestedAmount is the net amount invested in a holding on one calendar date
type InvestedAmount struct {
	Date              time.Time
	BuyOperations     int
	SellOperations    int
	BuyAmount         decimal.Decimal
	SellAmount        decimal.Decimal
	NetInvestedAmount decimal.Decimal
}

// InvestedOn computes the invested amount from operations executed exactly on date.
// Fees increase the cost of buys and reduce the proceeds of sells.
func InvestedOn(ops []*Operation, date time.Time) InvestedAmount {
	date = Day(date)
	out := InvestedAmount{Date: date}

	buyGross, buyFees := decimal.Zero, decimal.Zero
	sellGross, sellFees := decimal.Zero, decimal.Zero
	for _, op := range ops {
		if !Day(op.ExecutedAt).Equal(date) {
			continue
		}
		switch op.Kind {
		case OperationKindBuy:
			out.BuyOperations++
			buyGross = buyGross.Add(op.Amount())
			buyFees = buyFees.Add(op.Fees)
		case OperationKindSell:
			out.SellOperations++
			sellGross = sellGross.Add(op.Amount())
			sellFees = sellFees.Add(op.Fees)
		}
	}

	out.BuyAmount = buyGross.Add(buyFees)
	out.SellAmount = sellGross.Sub(sellFees)
	out.NetInvestedAmount = out.BuyAmount.Sub(out.SellAmount)
	return out
}
