package grpc

import (
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/simaogato/investfolio-backend/internal/usecase/history"
	"github.com/simaogato/investfolio-backend/internal/usecase/ledger"
	"github.com/simaogato/investfolio-backend/internal/usecase/position"
	"github.com/simaogato/investfolio-backend/internal/usecase/valuation"
)

func operationToMap(op *domain.Operation) map[string]any {
	m := map[string]any{
		"id":           op.ID.String(),
		"holding_id":   op.HoldingID.String(),
		"kind":         string(op.Kind),
		"quantity":     decimalValue(op.Quantity),
		"unit_price":   decimalValue(op.UnitPrice),
		"fees":         decimalValue(op.Fees),
		"gross_amount": decimalValue(domain.RoundMoney(op.Amount())),
		"executed_at":  dateValue(op.ExecutedAt),
		"notes":        nil,
		"created_at":   timestampValue(op.CreatedAt),
		"updated_at":   timestampValue(op.UpdatedAt),
	}
	if op.Notes != nil {
		m["notes"] = *op.Notes
	}
	return m
}

func operationPageToMap(page *ledger.OperationPage) map[string]any {
	items := make([]any, 0, len(page.Items))
	for _, op := range page.Items {
		items = append(items, operationToMap(op))
	}
	return map[string]any{
		"items":     items,
		"total":     page.Total,
		"page":      page.Page,
		"page_size": page.PageSize,
	}
}

func summaryToMap(s *domain.Summary) map[string]any {
	return map[string]any{
		"total_operations":   s.TotalOperations,
		"buy_operations":     s.BuyOperations,
		"sell_operations":    s.SellOperations,
		"buy_quantity":       decimalValue(s.BuyQuantity),
		"sell_quantity":      decimalValue(s.SellQuantity),
		"net_quantity":       decimalValue(s.NetQuantity),
		"gross_buy_amount":   decimalValue(s.GrossBuyAmount),
		"gross_sell_amount":  decimalValue(s.GrossSellAmount),
		"total_fees":         decimalValue(s.TotalFees),
		"average_buy_price":  decimalValue(s.AverageBuyPrice),
		"first_operation_at": optionalDateValue(s.FirstOperationAt),
		"last_operation_at":  optionalDateValue(s.LastOperationAt),
	}
}

func positionToMap(p *position.Report) map[string]any {
	return map[string]any{
		"holding_id":      p.HoldingID.String(),
		"quantity":        decimalValue(p.Quantity),
		"cost_basis":      decimalValue(p.CostBasis),
		"average_cost":    decimalValue(p.AverageCost),
		"operation_count": p.OperationCount,
	}
}

func investedAmountToMap(a *domain.InvestedAmount) map[string]any {
	return map[string]any{
		"date":                dateValue(a.Date),
		"buy_operations":      a.BuyOperations,
		"sell_operations":     a.SellOperations,
		"buy_amount":          decimalValue(a.BuyAmount),
		"sell_amount":         decimalValue(a.SellAmount),
		"net_invested_amount": decimalValue(a.NetInvestedAmount),
	}
}

func valuationToMap(v *valuation.HoldingValuation) map[string]any {
	m := map[string]any{
		"holding_id":          v.HoldingID.String(),
		"name":                v.Name,
		"ticker":              nil,
		"as_of":               dateValue(v.AsOf),
		"valuation_source":    string(v.Source),
		"quantity":            decimalValue(v.Quantity),
		"current_value":       decimalValue(v.CurrentValue),
		"invested_amount":     decimalValue(v.InvestedAmount),
		"unit_price":          decimalValue(v.UnitPrice),
		"profit_loss_amount":  decimalValue(v.ProfitLossAmount),
		"profit_loss_percent": decimalValue(v.ProfitLossPercent),
	}
	if v.Ticker != "" {
		m["ticker"] = v.Ticker
	}
	return m
}

func portfolioToMap(p *valuation.PortfolioValuation) map[string]any {
	holdings := make([]any, 0, len(p.Holdings))
	for i := range p.Holdings {
		holdings = append(holdings, valuationToMap(&p.Holdings[i]))
	}
	return map[string]any{
		"as_of":    dateValue(p.AsOf),
		"holdings": holdings,
		"totals": map[string]any{
			"holdings":            p.Totals.Holdings,
			"current_value":       decimalValue(p.Totals.CurrentValue),
			"invested_amount":     decimalValue(p.Totals.InvestedAmount),
			"profit_loss_amount":  decimalValue(p.Totals.ProfitLossAmount),
			"profit_loss_percent": decimalValue(p.Totals.ProfitLossPercent),
		},
	}
}

func historyToMap(h *history.History) map[string]any {
	points := make([]any, 0, len(h.Points))
	for _, p := range h.Points {
		points = append(points, map[string]any{
			"date":                         dateValue(p.Date),
			"buy_operations":               p.BuyOperations,
			"sell_operations":              p.SellOperations,
			"buy_amount":                   decimalValue(p.BuyAmount),
			"sell_amount":                  decimalValue(p.SellAmount),
			"net_invested_amount":          decimalValue(p.NetInvestedAmount),
			"cumulative_net_invested":      decimalValue(p.CumulativeNetInvested),
			"total_current_value_estimate": decimalValue(p.TotalCurrentValue),
			"total_profit_loss_estimate":   decimalValue(p.TotalProfitLoss),
		})
	}

	s := h.Summary
	return map[string]any{
		"start_date": dateValue(h.Start),
		"end_date":   dateValue(h.End),
		"points":     points,
		"summary": map[string]any{
			"days":                          s.Days,
			"first_date":                    dateValue(s.FirstDate),
			"last_date":                     dateValue(s.LastDate),
			"buy_operations":                s.BuyOperations,
			"sell_operations":               s.SellOperations,
			"total_buy_amount":              decimalValue(s.TotalBuyAmount),
			"total_sell_amount":             decimalValue(s.TotalSellAmount),
			"total_net_invested":            decimalValue(s.TotalNetInvested),
			"final_cumulative_net_invested": decimalValue(s.FinalCumulativeNet),
			"final_current_value":           decimalValue(s.FinalCurrentValue),
			"final_profit_loss":             decimalValue(s.FinalProfitLoss),
			"final_profit_loss_percent":     decimalValue(s.FinalProfitLossPercent),
		},
	}
}
