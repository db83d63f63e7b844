package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperationKind is the side of a ledger operation
type OperationKind string

const (
	OperationKindBuy  OperationKind = "buy"
	OperationKindSell OperationKind = "sell"
)

// ParseOperationKind normalizes a kind case-insensitively.
// Only "buy" and "sell" are accepted.
func ParseOperationKind(s string) (OperationKind, error) {
	switch OperationKind(strings.ToLower(strings.TrimSpace(s))) {
	case OperationKindBuy:
		return OperationKindBuy, nil
	case OperationKindSell:
		return OperationKindSell, nil
	default:
		return "", Validationf("operation kind must be buy or sell, got %q", s)
	}
}

// Operation is one buy or sell event recorded against a holding
type Operation struct {
	ID         uuid.UUID
	HoldingID  uuid.UUID
	OwnerID    uuid.UUID
	Kind       OperationKind
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	Fees       decimal.Decimal
	ExecutedAt time.Time // calendar date, UTC midnight
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Amount is quantity * unit price, fees excluded
func (o *Operation) Amount() decimal.Decimal {
	return o.Quantity.Mul(o.UnitPrice)
}

// Validate ensures the operation adheres to ledger rules
// Returns a VALIDATION error if a field is out of range
func (o *Operation) Validate() error {
	if o.Kind != OperationKindBuy && o.Kind != OperationKindSell {
		return Validationf("operation kind must be buy or sell, got %q", o.Kind)
	}
	if o.Quantity.LessThanOrEqual(decimal.Zero) {
		return Validationf("quantity must be positive")
	}
	if o.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return Validationf("unit_price must be positive")
	}
	if o.Fees.LessThan(decimal.Zero) {
		return Validationf("fees must be non-negative")
	}
	if o.ExecutedAt.IsZero() {
		return Validationf("executed_at is required")
	}
	return nil
}

// OperationInput is the payload used to record a new operation
type OperationInput struct {
	Kind       string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	Fees       *decimal.Decimal // defaults to 0
	ExecutedAt time.Time        // defaults to today when zero
	Notes      *string
}

// OperationPatch is a partial update. Nil fields are left unchanged.
type OperationPatch struct {
	Kind       *string
	Quantity   *decimal.Decimal
	UnitPrice  *decimal.Decimal
	Fees       *decimal.Decimal
	ExecutedAt *time.Time
	Notes      *string
}

// ApplyTo returns a copy of op with the patch merged in.
// The result still has to be validated.
func (p OperationPatch) ApplyTo(op Operation) (Operation, error) {
	if p.Kind != nil {
		kind, err := ParseOperationKind(*p.Kind)
		if err != nil {
			return op, err
		}
		op.Kind = kind
	}
	if p.Quantity != nil {
		op.Quantity = *p.Quantity
	}
	if p.UnitPrice != nil {
		op.UnitPrice = *p.UnitPrice
	}
	if p.Fees != nil {
		op.Fees = *p.Fees
	}
	if p.ExecutedAt != nil {
		op.ExecutedAt = Day(*p.ExecutedAt)
	}
	if p.Notes != nil {
		notes := *p.Notes
		op.Notes = &notes
	}
	return op, nil
}

// IsEmpty reports whether the patch changes nothing
func (p OperationPatch) IsEmpty() bool {
	return p.Kind == nil && p.Quantity == nil && p.UnitPrice == nil &&
		p.Fees == nil && p.ExecutedAt == nil && p.Notes == nil
}
