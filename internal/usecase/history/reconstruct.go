package history

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

// Point is one reconstructed calendar day of the portfolio
type Point struct {
	Date                  time.Time
	BuyOperations         int
	SellOperations        int
	BuyAmount             decimal.Decimal
	SellAmount            decimal.Decimal
	NetInvestedAmount     decimal.Decimal
	CumulativeNetInvested decimal.Decimal
	TotalCurrentValue     decimal.Decimal
	TotalProfitLoss       decimal.Decimal
}

// Summary holds the series totals and the final day's headline figures
type Summary struct {
	Days                   int
	FirstDate              time.Time
	LastDate               time.Time
	BuyOperations          int
	SellOperations         int
	TotalBuyAmount         decimal.Decimal
	TotalSellAmount        decimal.Decimal
	TotalNetInvested       decimal.Decimal
	FinalCumulativeNet     decimal.Decimal
	FinalCurrentValue      decimal.Decimal
	FinalProfitLoss        decimal.Decimal
	FinalProfitLossPercent decimal.Decimal
}

// History is the day-by-day series over [Start, End]
type History struct {
	Start   time.Time
	End     time.Time
	Points  []Point
	Summary Summary
}

// HoldingInput is everything Reconstruct needs about one holding
type HoldingInput struct {
	Holding    *domain.Holding
	Operations []*domain.Operation
	Prices     domain.PriceSeries
}

// holdingState is the running position of one holding during the day walk.
// It lives only for the duration of a single Reconstruct call.
type holdingState struct {
	holding *domain.Holding
	prices  domain.PriceSeries
	pos     domain.Position
	opened  bool
}

func (s *holdingState) apply(op *domain.Operation) {
	s.pos.Apply(op)
	s.opened = true
}

// priceOn serves the day's historical close to the resolver
func (s *holdingState) priceOn(day time.Time) domain.PriceLookup {
	price, ok := s.prices.At(day)
	if !ok || price.LessThanOrEqual(decimal.Zero) {
		return domain.NoPrices
	}
	ticker := s.holding.TickerSymbol()
	return func(t string) (decimal.Decimal, bool) {
		return price, t == ticker
	}
}

type event struct {
	state *holdingState
	op    *domain.Operation
}

// Reconstruct walks every calendar day in [start, end] and rebuilds the portfolio.
// Logic:
//  1. Opening state: ledger holdings replay operations strictly before start.
//     Ledger-less holdings registered before start (or without a register date)
//     get a synthetic opening buy of their baseline amount on start.
//  2. Events: operations executed inside the window, plus a synthetic buy on the
//     register date of ledger-less holdings registered inside the window.
//  3. Day walk: apply the day's events to the running states, accumulate the net
//     invested amount, and value every opened holding with that day's price.
func Reconstruct(inputs []HoldingInput, start, end time.Time) History {
	start, end = domain.Day(start), domain.Day(end)

	states := make([]*holdingState, 0, len(inputs))
	events := make(map[string][]event)
	addEvent := func(day time.Time, e event) {
		key := domain.DateKey(day)
		events[key] = append(events[key], e)
	}

	for _, in := range inputs {
		state := &holdingState{holding: in.Holding, prices: in.Prices}
		states = append(states, state)

		if len(in.Operations) > 0 {
			for _, op := range domain.SortChronologically(in.Operations) {
				executed := domain.Day(op.ExecutedAt)
				switch {
				case executed.Before(start):
					state.apply(op)
				case !executed.After(end):
					addEvent(executed, event{state: state, op: op})
				}
			}
			continue
		}

		register := in.Holding.RegisterDate
		switch {
		case register == nil || domain.Day(*register).Before(start):
			addEvent(start, event{state: state, op: openingBuy(in.Holding, start)})
		case !domain.Day(*register).After(end):
			addEvent(*register, event{state: state, op: openingBuy(in.Holding, *register)})
		}
	}

	h := History{Start: start, End: end}
	cumulative := decimal.Zero
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		p := Point{Date: day}

		for _, e := range events[domain.DateKey(day)] {
			e.state.apply(e.op)
			if e.op.Quantity.IsZero() {
				continue
			}
			switch e.op.Kind {
			case domain.OperationKindBuy:
				p.BuyOperations++
				p.BuyAmount = p.BuyAmount.Add(e.op.Amount()).Add(e.op.Fees)
			case domain.OperationKindSell:
				p.SellOperations++
				p.SellAmount = p.SellAmount.Add(e.op.Amount()).Sub(e.op.Fees)
			}
		}

		p.BuyAmount = domain.RoundMoney(p.BuyAmount)
		p.SellAmount = domain.RoundMoney(p.SellAmount)
		p.NetInvestedAmount = p.BuyAmount.Sub(p.SellAmount)
		cumulative = cumulative.Add(p.NetInvestedAmount)
		p.CumulativeNetInvested = cumulative

		total := decimal.Zero
		for _, s := range states {
			if !s.opened {
				continue
			}
			pos := s.pos
			v := domain.ResolveValuation(domain.ValuationInput{
				Holding:  s.holding,
				Position: &pos,
				Price:    s.priceOn(day),
				AsOf:     day,
			})
			total = total.Add(v.CurrentValue)
		}
		p.TotalCurrentValue = domain.RoundMoney(total)
		p.TotalProfitLoss = p.TotalCurrentValue.Sub(p.CumulativeNetInvested)

		h.Points = append(h.Points, p)
	}

	h.Summary = summarize(h.Points, start, end)
	return h
}

// openingBuy turns a ledger-less holding's baseline into a buy of its manual quantity.
// A holding without a baseline opens with a zero-quantity event that moves no money.
func openingBuy(h *domain.Holding, on time.Time) *domain.Operation {
	amount, _ := h.BaselineAmount()
	if amount.LessThanOrEqual(decimal.Zero) {
		return &domain.Operation{Kind: domain.OperationKindBuy, ExecutedAt: domain.Day(on)}
	}
	qty := h.ManualQuantity()
	return &domain.Operation{
		HoldingID:  h.ID,
		OwnerID:    h.OwnerID,
		Kind:       domain.OperationKindBuy,
		Quantity:   qty,
		UnitPrice:  amount.Div(qty),
		ExecutedAt: domain.Day(on),
	}
}

func summarize(points []Point, start, end time.Time) Summary {
	s := Summary{Days: len(points), FirstDate: start, LastDate: end}
	for _, p := range points {
		s.BuyOperations += p.BuyOperations
		s.SellOperations += p.SellOperations
		s.TotalBuyAmount = s.TotalBuyAmount.Add(p.BuyAmount)
		s.TotalSellAmount = s.TotalSellAmount.Add(p.SellAmount)
	}
	s.TotalNetInvested = s.TotalBuyAmount.Sub(s.TotalSellAmount)

	if len(points) > 0 {
		last := points[len(points)-1]
		s.FinalCumulativeNet = last.CumulativeNetInvested
		s.FinalCurrentValue = last.TotalCurrentValue
		s.FinalProfitLoss = last.TotalProfitLoss
		s.FinalProfitLossPercent = domain.RoundMoney(domain.ProfitLossPercent(last.TotalProfitLoss, last.CumulativeNetInvested))
	}
	return s
}
