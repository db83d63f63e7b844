package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

const operationColumns = `id, holding_id, owner_id, kind, quantity, unit_price, fees, executed_at, notes, created_at, updated_at`

// operationRepository implements domain.OperationRepository
type operationRepository struct {
	db *DB
}

// NewOperationRepository creates a new operation repository
func NewOperationRepository(db *DB) domain.OperationRepository {
	return &operationRepository{db: db}
}

// FindByHolding retrieves every operation of a holding in chronological order
func (r *operationRepository) FindByHolding(ctx context.Context, holdingID uuid.UUID) ([]*domain.Operation, error) {
	query := `
		SELECT ` + operationColumns + `
		FROM investment_operations
		WHERE holding_id = $1
		ORDER BY executed_at ASC, created_at ASC
	`
	return r.query(ctx, query, holdingID)
}

// FindByHoldingAndDate retrieves the operations of a holding executed on one calendar date
func (r *operationRepository) FindByHoldingAndDate(ctx context.Context, holdingID uuid.UUID, date time.Time) ([]*domain.Operation, error) {
	query := `
		SELECT ` + operationColumns + `
		FROM investment_operations
		WHERE holding_id = $1 AND executed_at = $2
		ORDER BY created_at ASC
	`
	return r.query(ctx, query, holdingID, domain.DateKey(domain.Day(date)))
}

// List retrieves a page of operations, newest first
func (r *operationRepository) List(ctx context.Context, holdingID uuid.UUID, limit, offset int) ([]*domain.Operation, error) {
	query := `
		SELECT ` + operationColumns + `
		FROM investment_operations
		WHERE holding_id = $1
		ORDER BY executed_at DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.query(ctx, query, holdingID, limit, offset)
}

// Count returns the number of operations of a holding
func (r *operationRepository) Count(ctx context.Context, holdingID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM investment_operations WHERE holding_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, holdingID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count operations: %w", err)
	}
	return count, nil
}

// GetByID retrieves one operation of a holding
func (r *operationRepository) GetByID(ctx context.Context, holdingID, operationID uuid.UUID) (*domain.Operation, error) {
	query := `
		SELECT ` + operationColumns + `
		FROM investment_operations
		WHERE id = $1 AND holding_id = $2
	`

	op, err := scanOperation(r.db.QueryRowContext(ctx, query, operationID, holdingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("operation %s not found", operationID)
		}
		return nil, fmt.Errorf("failed to get operation by ID: %w", err)
	}
	return op, nil
}

// Create inserts a new operation in a database transaction
func (r *operationRepository) Create(ctx context.Context, op *domain.Operation) error {
	query := `
		INSERT INTO investment_operations (` + operationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			op.ID,
			op.HoldingID,
			op.OwnerID,
			string(op.Kind),
			op.Quantity.String(),
			op.UnitPrice.String(),
			op.Fees.String(),
			domain.DateKey(op.ExecutedAt),
			nullString(op.Notes),
			formatTimestamp(op.CreatedAt),
			formatTimestamp(op.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert operation: %w", err)
		}
		return nil
	})
}

// Update replaces the mutable fields of a stored operation in a database transaction
func (r *operationRepository) Update(ctx context.Context, op *domain.Operation) error {
	query := `
		UPDATE investment_operations
		SET kind = $1, quantity = $2, unit_price = $3, fees = $4, executed_at = $5, notes = $6, updated_at = $7
		WHERE id = $8 AND holding_id = $9
	`

	return r.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			string(op.Kind),
			op.Quantity.String(),
			op.UnitPrice.String(),
			op.Fees.String(),
			domain.DateKey(op.ExecutedAt),
			nullString(op.Notes),
			formatTimestamp(op.UpdatedAt),
			op.ID,
			op.HoldingID,
		)
		if err != nil {
			return fmt.Errorf("failed to update operation: %w", err)
		}
		return expectOneRow(result, op.ID)
	})
}

// Delete removes an operation permanently in a database transaction
func (r *operationRepository) Delete(ctx context.Context, holdingID, operationID uuid.UUID) error {
	query := `DELETE FROM investment_operations WHERE id = $1 AND holding_id = $2`

	return r.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, operationID, holdingID)
		if err != nil {
			return fmt.Errorf("failed to delete operation: %w", err)
		}
		return expectOneRow(result, operationID)
	})
}

func (r *operationRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Operation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	ops := []*domain.Operation{}
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operations: %w", err)
	}

	return ops, nil
}

// inTx runs fn in a database transaction; any error rolls it back
func (r *operationRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func expectOneRow(result sql.Result, operationID uuid.UUID) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return domain.NotFoundf("operation %s not found", operationID)
	}
	return nil
}

func scanOperation(row rowScanner) (*domain.Operation, error) {
	var op domain.Operation
	var kind, quantity, unitPrice, fees, executedAt, createdAt, updatedAt string
	var notes sql.NullString

	if err := row.Scan(
		&op.ID,
		&op.HoldingID,
		&op.OwnerID,
		&kind,
		&quantity,
		&unitPrice,
		&fees,
		&executedAt,
		&notes,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	op.Kind = domain.OperationKind(kind)
	if notes.Valid {
		op.Notes = &notes.String
	}

	var err error
	if op.Quantity, err = parseDecimal("quantity", quantity); err != nil {
		return nil, err
	}
	if op.UnitPrice, err = parseDecimal("unit_price", unitPrice); err != nil {
		return nil, err
	}
	if op.Fees, err = parseDecimal("fees", fees); err != nil {
		return nil, err
	}
	if op.ExecutedAt, err = parseDate("executed_at", executedAt); err != nil {
		return nil, err
	}
	if op.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return nil, err
	}
	if op.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return nil, err
	}

	return &op, nil
}
