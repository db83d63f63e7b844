// Package memory keeps holdings and operations in process memory. Used for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

// Store holds every holding and operation behind one lock.
// Values are copied in and out.
type Store struct {
	mu         sync.RWMutex
	holdings   map[uuid.UUID]domain.Holding
	operations map[uuid.UUID][]domain.Operation // by holding, insertion order
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		holdings:   make(map[uuid.UUID]domain.Holding),
		operations: make(map[uuid.UUID][]domain.Operation),
	}
}

// Holdings returns the store as a domain.HoldingRepository
func (s *Store) Holdings() domain.HoldingRepository {
	return holdingRepository{s}
}

// Operations returns the store as a domain.OperationRepository
func (s *Store) Operations() domain.OperationRepository {
	return operationRepository{s}
}

type holdingRepository struct {
	s *Store
}

func (r holdingRepository) FindOwned(_ context.Context, holdingID, ownerID uuid.UUID) (*domain.Holding, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	h, ok := r.s.holdings[holdingID]
	if !ok {
		return nil, domain.NotFoundf("holding %s not found", holdingID)
	}
	if h.OwnerID != ownerID {
		return nil, domain.Forbiddenf("holding %s belongs to another owner", holdingID)
	}
	return &h, nil
}

func (r holdingRepository) FindAllOwned(_ context.Context, ownerID uuid.UUID) ([]*domain.Holding, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*domain.Holding{}
	for _, h := range r.s.holdings {
		if h.OwnerID == ownerID {
			out = append(out, &h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r holdingRepository) Create(_ context.Context, holding *domain.Holding) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.holdings[holding.ID] = *holding
	return nil
}

type operationRepository struct {
	s *Store
}

func (r operationRepository) FindByHolding(_ context.Context, holdingID uuid.UUID) ([]*domain.Operation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return copyOps(r.s.operations[holdingID], func(domain.Operation) bool { return true }), nil
}

func (r operationRepository) FindByHoldingAndDate(_ context.Context, holdingID uuid.UUID, date time.Time) ([]*domain.Operation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	day := domain.Day(date)
	return copyOps(r.s.operations[holdingID], func(op domain.Operation) bool {
		return domain.Day(op.ExecutedAt).Equal(day)
	}), nil
}

func (r operationRepository) List(_ context.Context, holdingID uuid.UUID, limit, offset int) ([]*domain.Operation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ops := copyOps(r.s.operations[holdingID], func(domain.Operation) bool { return true })
	sort.SliceStable(ops, func(i, j int) bool {
		if !ops[i].ExecutedAt.Equal(ops[j].ExecutedAt) {
			return ops[i].ExecutedAt.After(ops[j].ExecutedAt)
		}
		return ops[i].CreatedAt.After(ops[j].CreatedAt)
	})

	if offset >= len(ops) {
		return []*domain.Operation{}, nil
	}
	end := min(offset+limit, len(ops))
	return ops[offset:end], nil
}

func (r operationRepository) Count(_ context.Context, holdingID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.s.operations[holdingID]), nil
}

func (r operationRepository) GetByID(_ context.Context, holdingID, operationID uuid.UUID) (*domain.Operation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := r.s.indexOf(holdingID, operationID)
	if i < 0 {
		return nil, domain.NotFoundf("operation %s not found", operationID)
	}
	op := r.s.operations[holdingID][i]
	return &op, nil
}

func (r operationRepository) Create(_ context.Context, op *domain.Operation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.operations[op.HoldingID] = append(r.s.operations[op.HoldingID], *op)
	return nil
}

func (r operationRepository) Update(_ context.Context, op *domain.Operation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.indexOf(op.HoldingID, op.ID)
	if i < 0 {
		return domain.NotFoundf("operation %s not found", op.ID)
	}
	stored := r.s.operations[op.HoldingID][i]
	updated := *op
	updated.CreatedAt = stored.CreatedAt
	updated.OwnerID = stored.OwnerID
	r.s.operations[op.HoldingID][i] = updated
	return nil
}

func (r operationRepository) Delete(_ context.Context, holdingID, operationID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.indexOf(holdingID, operationID)
	if i < 0 {
		return domain.NotFoundf("operation %s not found", operationID)
	}
	ops := r.s.operations[holdingID]
	r.s.operations[holdingID] = append(ops[:i:i], ops[i+1:]...)
	return nil
}

// indexOf must be called with the lock held
func (s *Store) indexOf(holdingID, operationID uuid.UUID) int {
	for i, op := range s.operations[holdingID] {
		if op.ID == operationID {
			return i
		}
	}
	return -1
}

func copyOps(ops []domain.Operation, keep func(domain.Operation) bool) []*domain.Operation {
	out := make([]*domain.Operation, 0, len(ops))
	for _, op := range ops {
		if keep(op) {
			out = append(out, &op)
		}
	}
	return out
}
