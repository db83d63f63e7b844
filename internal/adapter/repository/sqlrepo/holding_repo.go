package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

const holdingColumns = `id, owner_id, name, ticker, asset_class, quantity, value, annual_rate, register_date, estimated_value_on_create_date`

// holdingRepository implements domain.HoldingRepository
type holdingRepository struct {
	db *DB
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *DB) domain.HoldingRepository {
	return &holdingRepository{db: db}
}

// FindOwned retrieves a holding and checks it belongs to ownerID
func (r *holdingRepository) FindOwned(ctx context.Context, holdingID, ownerID uuid.UUID) (*domain.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE id = $1`

	holding, err := scanHolding(r.db.QueryRowContext(ctx, query, holdingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("holding %s not found", holdingID)
		}
		return nil, fmt.Errorf("failed to get holding by ID: %w", err)
	}

	if holding.OwnerID != ownerID {
		return nil, domain.Forbiddenf("holding %s belongs to another owner", holdingID)
	}
	return holding, nil
}

// FindAllOwned retrieves every holding of an owner ordered by name
func (r *holdingRepository) FindAllOwned(ctx context.Context, ownerID uuid.UUID) ([]*domain.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holdings WHERE owner_id = $1 ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	holdings := []*domain.Holding{}
	for rows.Next() {
		holding, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, holding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	return holdings, nil
}

// Create creates a new holding
func (r *holdingRepository) Create(ctx context.Context, holding *domain.Holding) error {
	query := `
		INSERT INTO holdings (` + holdingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var registerDate interface{}
	if holding.RegisterDate != nil {
		registerDate = domain.DateKey(*holding.RegisterDate)
	}

	_, err := r.db.ExecContext(ctx, query,
		holding.ID,
		holding.OwnerID,
		holding.Name,
		nullString(holding.Ticker),
		holding.AssetClass,
		nullDecimal(holding.Quantity),
		nullDecimal(holding.Value),
		nullDecimal(holding.AnnualRate),
		registerDate,
		nullDecimal(holding.EstimatedValueOnCreateDate),
	)
	if err != nil {
		return fmt.Errorf("failed to create holding: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHolding(row rowScanner) (*domain.Holding, error) {
	var h domain.Holding
	var ticker, quantity, value, annualRate, registerDate, estimated sql.NullString

	if err := row.Scan(
		&h.ID,
		&h.OwnerID,
		&h.Name,
		&ticker,
		&h.AssetClass,
		&quantity,
		&value,
		&annualRate,
		&registerDate,
		&estimated,
	); err != nil {
		return nil, err
	}

	if ticker.Valid {
		h.Ticker = &ticker.String
	}

	var err error
	if h.Quantity, err = parseNullDecimal("quantity", quantity); err != nil {
		return nil, err
	}
	if h.Value, err = parseNullDecimal("value", value); err != nil {
		return nil, err
	}
	if h.AnnualRate, err = parseNullDecimal("annual_rate", annualRate); err != nil {
		return nil, err
	}
	if h.EstimatedValueOnCreateDate, err = parseNullDecimal("estimated_value_on_create_date", estimated); err != nil {
		return nil, err
	}
	if registerDate.Valid {
		d, err := parseDate("register_date", registerDate.String)
		if err != nil {
			return nil, err
		}
		h.RegisterDate = &d
	}

	return &h, nil
}
