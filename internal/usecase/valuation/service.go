package valuation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/simaogato/investfolio-backend/internal/logger"
)

// HoldingValuation is the current valuation of one holding
type HoldingValuation struct {
	HoldingID uuid.UUID
	Name      string
	Ticker    string
	AsOf      time.Time
	domain.Valuation
}

// PortfolioValuation is every holding of an owner valued, plus the totals
type PortfolioValuation struct {
	AsOf     time.Time
	Holdings []HoldingValuation
	Totals   domain.ValuationTotals
}

// ValuationService values holdings against the market, fixed-income projection or manual figures
type ValuationService struct {
	HoldingRepo   domain.HoldingRepository
	OperationRepo domain.OperationRepository
	Prices        domain.PriceService
	Now           func() time.Time
}

// NewValuationService creates a new ValuationService instance
func NewValuationService(
	holdingRepo domain.HoldingRepository,
	operationRepo domain.OperationRepository,
	prices domain.PriceService,
) *ValuationService {
	return &ValuationService{
		HoldingRepo:   holdingRepo,
		OperationRepo: operationRepo,
		Prices:        prices,
		Now:           time.Now,
	}
}

// GetInvestmentCurrentValuation values a single holding of the caller
func (s *ValuationService) GetInvestmentCurrentValuation(ctx context.Context, ownerID, holdingID uuid.UUID) (*HoldingValuation, error) {
	holding, err := s.HoldingRepo.FindOwned(ctx, holdingID, ownerID)
	if err != nil {
		return nil, domain.Unavailable("failed to get holding", err)
	}

	v, err := s.value(ctx, holding, domain.Day(s.Now().UTC()))
	if err != nil {
		return nil, err
	}

	rounded := v
	rounded.Valuation = v.Valuation.Rounded()
	return &rounded, nil
}

// GetPortfolioCurrentValuation values every holding of the caller and sums them up.
// Logic:
//   - each holding goes through ResolveValuation with its own price lookup
//   - a failed price lookup only degrades that holding to its fallback
//   - the total percent is recomputed from the total amounts
func (s *ValuationService) GetPortfolioCurrentValuation(ctx context.Context, ownerID uuid.UUID) (*PortfolioValuation, error) {
	holdings, err := s.HoldingRepo.FindAllOwned(ctx, ownerID)
	if err != nil {
		return nil, domain.Unavailable("failed to list holdings", err)
	}

	asOf := domain.Day(s.Now().UTC())
	out := &PortfolioValuation{
		AsOf:     asOf,
		Holdings: make([]HoldingValuation, 0, len(holdings)),
	}

	vals := make([]domain.Valuation, 0, len(holdings))
	for _, holding := range holdings {
		v, err := s.value(ctx, holding, asOf)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v.Valuation)

		v.Valuation = v.Valuation.Rounded()
		out.Holdings = append(out.Holdings, v)
	}

	out.Totals = domain.SumValuations(vals).Rounded()
	return out, nil
}

func (s *ValuationService) value(ctx context.Context, holding *domain.Holding, asOf time.Time) (HoldingValuation, error) {
	ops, err := s.OperationRepo.FindByHolding(ctx, holding.ID)
	if err != nil {
		return HoldingValuation{}, domain.Unavailable("failed to get operations", err)
	}

	var pos *domain.Position
	if len(ops) > 0 {
		p := domain.ComputePosition(ops)
		pos = &p
	}

	v := domain.ResolveValuation(domain.ValuationInput{
		Holding:  holding,
		Position: pos,
		Price:    s.currentPrice(ctx, holding),
		AsOf:     asOf,
	})

	if v.Source != domain.SourceMarketPrice && holding.HasTicker() {
		logger.FromContext(ctx).Warn("valued without market price",
			"holding_id", holding.ID, "ticker", holding.TickerSymbol(), "source", v.Source)
	}

	return HoldingValuation{
		HoldingID: holding.ID,
		Name:      holding.Name,
		Ticker:    holding.TickerSymbol(),
		AsOf:      asOf,
		Valuation: v,
	}, nil
}

// currentPrice fetches the holding's price once and serves it to the resolver.
// Lookup failures degrade to "no price".
func (s *ValuationService) currentPrice(ctx context.Context, holding *domain.Holding) domain.PriceLookup {
	if !holding.HasTicker() || s.Prices == nil {
		return domain.NoPrices
	}

	ticker := holding.TickerSymbol()
	price, ok, err := s.Prices.CurrentPrice(ctx, ticker)
	if err != nil {
		logger.FromContext(ctx).Warn("price lookup failed", "ticker", ticker, "error", err)
		return domain.NoPrices
	}
	if !ok || price.LessThanOrEqual(decimal.Zero) {
		return domain.NoPrices
	}

	return func(t string) (decimal.Decimal, bool) {
		if t != ticker {
			return decimal.Zero, false
		}
		return price, true
	}
}
