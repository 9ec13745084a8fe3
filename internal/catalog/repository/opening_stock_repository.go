package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
)

type MySQLOpeningStockRepository struct {
	db *sql.DB
}

func NewMySQLOpeningStockRepository(db *sql.DB) *MySQLOpeningStockRepository {
	return &MySQLOpeningStockRepository{db: db}
}

// Insert records the opening stock for a product and month. The unique key
// on (product_id, month) rejects a second baseline for the same month.
func (r *MySQLOpeningStockRepository) Insert(ctx context.Context, rec domain.OpeningStock) (int, error) {
	query := `
		INSERT INTO opening_stock (product_id, month, opening_quantity, recorded_by)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		rec.ProductID, rec.Month, rec.OpeningQuantity, rec.RecordedBy,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return 0, apperrors.NewConflictError(fmt.Sprintf(
				"opening stock for product %d in %s already recorded",
				rec.ProductID, rec.Month.Format("January 2006"),
			))
		}
		return 0, fmt.Errorf("inserting opening stock: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

func (r *MySQLOpeningStockRepository) FindByProductAndMonth(ctx context.Context, productID int, month string) (*domain.OpeningStock, error) {
	query := `
		SELECT id, product_id, month, opening_quantity, recorded_by, recorded_at
		FROM opening_stock
		WHERE product_id = ? AND month = ?
	`

	var rec domain.OpeningStock
	err := r.db.QueryRowContext(ctx, query, productID, month).Scan(
		&rec.ID, &rec.ProductID, &rec.Month, &rec.OpeningQuantity,
		&rec.RecordedBy, &rec.RecordedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no opening stock for product %d in %s", productID, month))
	}
	if err != nil {
		return nil, fmt.Errorf("querying opening stock: %w", err)
	}

	return &rec, nil
}
