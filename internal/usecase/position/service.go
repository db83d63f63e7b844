package position

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

// Report is the current position of a holding as replayed from its ledger
type Report struct {
	HoldingID      uuid.UUID
	Quantity       decimal.Decimal
	CostBasis      decimal.Decimal
	AverageCost    decimal.Decimal
	OperationCount int
}

// PositionService answers read-only questions about a single holding's ledger
type PositionService struct {
	HoldingRepo   domain.HoldingRepository
	OperationRepo domain.OperationRepository
}

// NewPositionService creates a new PositionService instance
func NewPositionService(holdingRepo domain.HoldingRepository, operationRepo domain.OperationRepository) *PositionService {
	return &PositionService{
		HoldingRepo:   holdingRepo,
		OperationRepo: operationRepo,
	}
}

// GetSummary aggregates every operation of the holding regardless of order
func (s *PositionService) GetSummary(ctx context.Context, ownerID, holdingID uuid.UUID) (*domain.Summary, error) {
	ops, err := s.operations(ctx, ownerID, holdingID)
	if err != nil {
		return nil, err
	}

	summary := domain.Summarize(ops).Rounded()
	return &summary, nil
}

// GetPosition replays the full ledger into quantity and weighted-average cost basis.
// Nothing is cached: two calls without a mutation in between return identical results.
func (s *PositionService) GetPosition(ctx context.Context, ownerID, holdingID uuid.UUID) (*Report, error) {
	ops, err := s.operations(ctx, ownerID, holdingID)
	if err != nil {
		return nil, err
	}

	pos := domain.ComputePosition(ops)
	return &Report{
		HoldingID:      holdingID,
		Quantity:       pos.Quantity,
		CostBasis:      domain.RoundMoney(pos.CostBasis),
		AverageCost:    domain.RoundMoney(pos.AverageCost()),
		OperationCount: len(ops),
	}, nil
}

// GetInvestedAmountByDate returns the money that went in and out of a holding on one calendar date
func (s *PositionService) GetInvestedAmountByDate(ctx context.Context, ownerID, holdingID uuid.UUID, date time.Time) (*domain.InvestedAmount, error) {
	if date.IsZero() {
		return nil, domain.Validationf("date is required")
	}
	if _, err := s.HoldingRepo.FindOwned(ctx, holdingID, ownerID); err != nil {
		return nil, domain.Unavailable("failed to get holding", err)
	}

	day := domain.Day(date)
	ops, err := s.OperationRepo.FindByHoldingAndDate(ctx, holdingID, day)
	if err != nil {
		return nil, domain.Unavailable("failed to get operations", err)
	}

	amount := domain.InvestedOn(ops, day).Rounded()
	return &amount, nil
}

func (s *PositionService) operations(ctx context.Context, ownerID, holdingID uuid.UUID) ([]*domain.Operation, error) {
	if _, err := s.HoldingRepo.FindOwned(ctx, holdingID, ownerID); err != nil {
		return nil, domain.Unavailable("failed to get holding", err)
	}

	ops, err := s.OperationRepo.FindByHolding(ctx, holdingID)
	if err != nil {
		return nil, domain.Unavailable("failed to get operations", err)
	}
	return ops, nil
}
