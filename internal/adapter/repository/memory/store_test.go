package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoldings(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Holdings()
	owner := uuid.New()

	require.NoError(t, repo.Create(ctx, &domain.Holding{ID: uuid.New(), OwnerID: owner, Name: "b"}))
	require.NoError(t, repo.Create(ctx, &domain.Holding{ID: uuid.New(), OwnerID: owner, Name: "a"}))
	foreign := &domain.Holding{ID: uuid.New(), OwnerID: uuid.New(), Name: "c"}
	require.NoError(t, repo.Create(ctx, foreign))

	all, err := repo.FindAllOwned(ctx, owner)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name)

	_, err = repo.FindOwned(ctx, foreign.ID, owner)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = repo.FindOwned(ctx, uuid.New(), owner)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	got, err := repo.FindOwned(ctx, foreign.ID, foreign.OwnerID)
	require.NoError(t, err)
	got.Name = "mutated"
	again, _ := repo.FindOwned(ctx, foreign.ID, foreign.OwnerID)
	assert.Equal(t, "c", again.Name)
}

func TestOperations(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Operations()
	holdingID := uuid.New()
	day := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	created := day.Add(9 * time.Hour)

	mk := func(executed time.Time, seq int) *domain.Operation {
		return &domain.Operation{
			ID:         uuid.New(),
			HoldingID:  holdingID,
			Kind:       domain.OperationKindBuy,
			Quantity:   decimal.NewFromInt(1),
			UnitPrice:  decimal.NewFromInt(1),
			ExecutedAt: executed,
			CreatedAt:  created.Add(time.Duration(seq) * time.Minute),
		}
	}
	first := mk(day, 1)
	second := mk(day, 2)
	third := mk(day.AddDate(0, 0, 1), 0)
	for _, op := range []*domain.Operation{first, second, third} {
		require.NoError(t, repo.Create(ctx, op))
	}

	page, err := repo.List(ctx, holdingID, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, third.ID, page[0].ID)
	assert.Equal(t, second.ID, page[1].ID)

	empty, err := repo.List(ctx, holdingID, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	onDay, err := repo.FindByHoldingAndDate(ctx, holdingID, day.Add(12*time.Hour))
	require.NoError(t, err)
	assert.Len(t, onDay, 2)

	patched := *first
	patched.Quantity = decimal.NewFromInt(7)
	patched.CreatedAt = time.Time{}
	require.NoError(t, repo.Update(ctx, &patched))
	got, err := repo.GetByID(ctx, holdingID, first.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, first.CreatedAt, got.CreatedAt)

	require.NoError(t, repo.Delete(ctx, holdingID, second.ID))
	assert.True(t, errors.Is(repo.Delete(ctx, holdingID, second.ID), domain.ErrNotFound))
	count, err := repo.Count(ctx, holdingID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	all, err := repo.FindByHolding(ctx, holdingID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, third.ID, all[1].ID)
}
