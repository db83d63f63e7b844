package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperationRepository defines the interface for ledger persistence operations.
// Every mutation must be atomic: on error the ledger is left unchanged.
type OperationRepository interface {
	// FindByHolding retrieves every operation of a holding in insertion order
	FindByHolding(ctx context.Context, holdingID uuid.UUID) ([]*Operation, error)

	// FindByHoldingAndDate retrieves the operations of a holding executed on one calendar date
	FindByHoldingAndDate(ctx context.Context, holdingID uuid.UUID, date time.Time) ([]*Operation, error)

	// List retrieves a page of operations ordered by (executed_at DESC, created_at DESC)
	List(ctx context.Context, holdingID uuid.UUID, limit, offset int) ([]*Operation, error)

	// Count returns the number of operations recorded for a holding
	Count(ctx context.Context, holdingID uuid.UUID) (int, error)

	// GetByID retrieves one operation of a holding.
	// Returns a NOT_FOUND error if it does not exist under that holding.
	GetByID(ctx context.Context, holdingID, operationID uuid.UUID) (*Operation, error)

	// Create inserts a new operation
	Create(ctx context.Context, op *Operation) error

	// Update replaces a stored operation
	Update(ctx context.Context, op *Operation) error

	// Delete removes an operation permanently
	Delete(ctx context.Context, holdingID, operationID uuid.UUID) error
}

// HoldingRepository defines the interface for holding lookups
type HoldingRepository interface {
	// FindOwned retrieves a holding on behalf of ownerID.
	// Returns NOT_FOUND if the holding does not exist, FORBIDDEN if another owner has it.
	FindOwned(ctx context.Context, holdingID, ownerID uuid.UUID) (*Holding, error)

	// FindAllOwned retrieves every holding of an owner
	FindAllOwned(ctx context.Context, ownerID uuid.UUID) ([]*Holding, error)

	// Create creates a new holding
	Create(ctx context.Context, holding *Holding) error
}

// PriceService defines the interface of the external market price lookup
type PriceService interface {
	// CurrentPrice returns the latest price of ticker; ok is false when none is known
	CurrentPrice(ctx context.Context, ticker string) (price decimal.Decimal, ok bool, err error)

	// HistoricalPrices returns daily prices of ticker in [start, end]
	HistoricalPrices(ctx context.Context, ticker string, start, end time.Time) (PriceSeries, error)
}
