// Package usecasetest holds testify mocks of the domain ports shared by the use case tests.
package usecasetest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockHoldingRepository is a mock implementation of HoldingRepository for testing
type MockHoldingRepository struct {
	mock.Mock
}

func (m *MockHoldingRepository) FindOwned(ctx context.Context, holdingID, ownerID uuid.UUID) (*domain.Holding, error) {
	args := m.Called(ctx, holdingID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Holding), args.Error(1)
}

func (m *MockHoldingRepository) FindAllOwned(ctx context.Context, ownerID uuid.UUID) ([]*domain.Holding, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Holding), args.Error(1)
}

func (m *MockHoldingRepository) Create(ctx context.Context, holding *domain.Holding) error {
	args := m.Called(ctx, holding)
	return args.Error(0)
}

// MockOperationRepository is a mock implementation of OperationRepository for testing
type MockOperationRepository struct {
	mock.Mock
}

func (m *MockOperationRepository) FindByHolding(ctx context.Context, holdingID uuid.UUID) ([]*domain.Operation, error) {
	args := m.Called(ctx, holdingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) FindByHoldingAndDate(ctx context.Context, holdingID uuid.UUID, date time.Time) ([]*domain.Operation, error) {
	args := m.Called(ctx, holdingID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) List(ctx context.Context, holdingID uuid.UUID, limit, offset int) ([]*domain.Operation, error) {
	args := m.Called(ctx, holdingID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) Count(ctx context.Context, holdingID uuid.UUID) (int, error) {
	args := m.Called(ctx, holdingID)
	return args.Int(0), args.Error(1)
}

func (m *MockOperationRepository) GetByID(ctx context.Context, holdingID, operationID uuid.UUID) (*domain.Operation, error) {
	args := m.Called(ctx, holdingID, operationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) Create(ctx context.Context, op *domain.Operation) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

func (m *MockOperationRepository) Update(ctx context.Context, op *domain.Operation) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

func (m *MockOperationRepository) Delete(ctx context.Context, holdingID, operationID uuid.UUID) error {
	args := m.Called(ctx, holdingID, operationID)
	return args.Error(0)
}

// MockPriceService is a mock implementation of PriceService for testing
type MockPriceService struct {
	mock.Mock
}

func (m *MockPriceService) CurrentPrice(ctx context.Context, ticker string) (decimal.Decimal, bool, error) {
	args := m.Called(ctx, ticker)
	return args.Get(0).(decimal.Decimal), args.Bool(1), args.Error(2)
}

func (m *MockPriceService) HistoricalPrices(ctx context.Context, ticker string, start, end time.Time) (domain.PriceSeries, error) {
	args := m.Called(ctx, ticker, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.PriceSeries), args.Error(1)
}
