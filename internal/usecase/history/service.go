package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/simaogato/investfolio-backend/internal/logger"
)

const (
	DefaultWindowDays = 30
	MaxWindowDays     = 3660
)

// HistoryService rebuilds an owner's portfolio day by day
type HistoryService struct {
	HoldingRepo   domain.HoldingRepository
	OperationRepo domain.OperationRepository
	Prices        domain.PriceService
	Now           func() time.Time
}

// NewHistoryService creates a new HistoryService instance
func NewHistoryService(
	holdingRepo domain.HoldingRepository,
	operationRepo domain.OperationRepository,
	prices domain.PriceService,
) *HistoryService {
	return &HistoryService{
		HoldingRepo:   holdingRepo,
		OperationRepo: operationRepo,
		Prices:        prices,
		Now:           time.Now,
	}
}

// GetHistory returns the portfolio series over [start, end].
// end defaults to today and start to 30 days before end.
func (s *HistoryService) GetHistory(ctx context.Context, ownerID uuid.UUID, start, end *time.Time) (*History, error) {
	from, to, err := s.window(start, end)
	if err != nil {
		return nil, err
	}

	holdings, err := s.HoldingRepo.FindAllOwned(ctx, ownerID)
	if err != nil {
		return nil, domain.Unavailable("failed to list holdings", err)
	}

	series := make(map[string]domain.PriceSeries)
	inputs := make([]HoldingInput, 0, len(holdings))
	for _, holding := range holdings {
		ops, err := s.OperationRepo.FindByHolding(ctx, holding.ID)
		if err != nil {
			return nil, domain.Unavailable("failed to get operations", err)
		}

		in := HoldingInput{Holding: holding, Operations: ops, Prices: domain.PriceSeries{}}
		if holding.HasTicker() {
			ticker := holding.TickerSymbol()
			if _, ok := series[ticker]; !ok {
				series[ticker] = s.historicalPrices(ctx, ticker, from, to)
			}
			in.Prices = series[ticker]
		}
		inputs = append(inputs, in)
	}

	h := Reconstruct(inputs, from, to)
	logger.FromContext(ctx).Debug("history reconstructed",
		"owner_id", ownerID, "holdings", len(holdings), "days", h.Summary.Days)
	return &h, nil
}

func (s *HistoryService) window(start, end *time.Time) (time.Time, time.Time, error) {
	to := domain.Day(s.Now().UTC())
	if end != nil {
		to = domain.Day(*end)
	}
	from := to.AddDate(0, 0, -DefaultWindowDays)
	if start != nil {
		from = domain.Day(*start)
	}

	if from.After(to) {
		return time.Time{}, time.Time{}, domain.Validationf("start_date %s is after end_date %s",
			from.Format(domain.DateLayout), to.Format(domain.DateLayout))
	}
	if domain.DaysBetween(from, to) > MaxWindowDays {
		return time.Time{}, time.Time{}, domain.Validationf("history range must not exceed %d days", MaxWindowDays)
	}
	return from, to, nil
}

// historicalPrices degrades a failed lookup to an empty series
func (s *HistoryService) historicalPrices(ctx context.Context, ticker string, from, to time.Time) domain.PriceSeries {
	if s.Prices == nil {
		return domain.PriceSeries{}
	}
	prices, err := s.Prices.HistoricalPrices(ctx, ticker, from, to)
	if err != nil {
		logger.FromContext(ctx).Warn("historical price lookup failed", "ticker", ticker, "error", err)
		return domain.PriceSeries{}
	}
	if prices == nil {
		return domain.PriceSeries{}
	}
	return prices
}
