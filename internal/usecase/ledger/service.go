package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/simaogato/investfolio-backend/internal/logger"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// OperationPage is one page of a holding's operations, newest first
type OperationPage struct {
	Items    []*domain.Operation
	Total    int
	Page     int
	PageSize int
}

// LedgerService handles the buy/sell operation ledger of a holding
type LedgerService struct {
	HoldingRepo   domain.HoldingRepository
	OperationRepo domain.OperationRepository
	Now           func() time.Time
}

// NewLedgerService creates a new LedgerService instance
func NewLedgerService(holdingRepo domain.HoldingRepository, operationRepo domain.OperationRepository) *LedgerService {
	return &LedgerService{
		HoldingRepo:   holdingRepo,
		OperationRepo: operationRepo,
		Now:           time.Now,
	}
}

// CreateOperation records a new buy or sell operation
// Logic:
//  1. Resolve the holding for the caller (NOT_FOUND / FORBIDDEN)
//  2. Normalize the kind, default fees to 0 and executed_at to today
//  3. Validate and insert
func (s *LedgerService) CreateOperation(ctx context.Context, ownerID, holdingID uuid.UUID, input domain.OperationInput) (*domain.Operation, error) {
	holding, err := s.authorize(ctx, ownerID, holdingID)
	if err != nil {
		return nil, err
	}

	kind, err := domain.ParseOperationKind(input.Kind)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	op := &domain.Operation{
		ID:         uuid.New(),
		HoldingID:  holding.ID,
		OwnerID:    holding.OwnerID,
		Kind:       kind,
		Quantity:   input.Quantity,
		UnitPrice:  input.UnitPrice,
		Fees:       decimal.Zero,
		ExecutedAt: domain.Day(now),
		Notes:      input.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if input.Fees != nil {
		op.Fees = *input.Fees
	}
	if !input.ExecutedAt.IsZero() {
		op.ExecutedAt = domain.Day(input.ExecutedAt)
	}

	if err := op.Validate(); err != nil {
		return nil, err
	}

	if err := s.OperationRepo.Create(ctx, op); err != nil {
		return nil, domain.Unavailable("failed to create operation", err)
	}

	logger.FromContext(ctx).Info("operation created",
		"holding_id", holding.ID, "operation_id", op.ID, "kind", op.Kind)
	return op, nil
}

// ListOperations returns a page of operations ordered by (executed_at DESC, created_at DESC).
// page starts at 1; pageSize 0 means DefaultPageSize.
func (s *LedgerService) ListOperations(ctx context.Context, ownerID, holdingID uuid.UUID, page, pageSize int) (*OperationPage, error) {
	if _, err := s.authorize(ctx, ownerID, holdingID); err != nil {
		return nil, err
	}

	if page < 1 {
		return nil, domain.Validationf("page must be at least 1")
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, domain.Validationf("page_size must be between 1 and %d", MaxPageSize)
	}

	total, err := s.OperationRepo.Count(ctx, holdingID)
	if err != nil {
		return nil, domain.Unavailable("failed to count operations", err)
	}

	items, err := s.OperationRepo.List(ctx, holdingID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, domain.Unavailable("failed to list operations", err)
	}

	return &OperationPage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// UpdateOperation applies a partial update; absent fields keep their stored value.
// The merged operation is validated again before it is written.
func (s *LedgerService) UpdateOperation(ctx context.Context, ownerID, holdingID, operationID uuid.UUID, patch domain.OperationPatch) (*domain.Operation, error) {
	if _, err := s.authorize(ctx, ownerID, holdingID); err != nil {
		return nil, err
	}

	current, err := s.OperationRepo.GetByID(ctx, holdingID, operationID)
	if err != nil {
		return nil, domain.Unavailable("failed to get operation", err)
	}

	updated, err := patch.ApplyTo(*current)
	if err != nil {
		return nil, err
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return current, nil
	}
	updated.UpdatedAt = s.Now().UTC()

	if err := s.OperationRepo.Update(ctx, &updated); err != nil {
		return nil, domain.Unavailable("failed to update operation", err)
	}

	logger.FromContext(ctx).Info("operation updated", "holding_id", holdingID, "operation_id", operationID)
	return &updated, nil
}

// DeleteOperation removes an operation permanently. It stops counting in the next replay.
func (s *LedgerService) DeleteOperation(ctx context.Context, ownerID, holdingID, operationID uuid.UUID) error {
	if _, err := s.authorize(ctx, ownerID, holdingID); err != nil {
		return err
	}

	if _, err := s.OperationRepo.GetByID(ctx, holdingID, operationID); err != nil {
		return domain.Unavailable("failed to get operation", err)
	}

	if err := s.OperationRepo.Delete(ctx, holdingID, operationID); err != nil {
		return domain.Unavailable("failed to delete operation", err)
	}

	logger.FromContext(ctx).Info("operation deleted", "holding_id", holdingID, "operation_id", operationID)
	return nil
}

func (s *LedgerService) authorize(ctx context.Context, ownerID, holdingID uuid.UUID) (*domain.Holding, error) {
	holding, err := s.HoldingRepo.FindOwned(ctx, holdingID, ownerID)
	if err != nil {
		return nil, domain.Unavailable("failed to get holding", err)
	}
	return holding, nil
}
