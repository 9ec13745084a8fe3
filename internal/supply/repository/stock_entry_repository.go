package repository

import (
	"context"
	"database/sql"
	"fmt"

	"stockledger/internal/domain"
)

type MySQLStockEntryRepository struct {
	db *sql.DB
}

func NewMySQLStockEntryRepository(db *sql.DB) *MySQLStockEntryRepository {
	return &MySQLStockEntryRepository{db: db}
}

// Insert appends one ledger entry. Entries are write-once; there is no
// update or delete path anywhere in this package.
func (r *MySQLStockEntryRepository) Insert(ctx context.Context, tx *sql.Tx, entry domain.StockEntry) (int, error) {
	query := `
		INSERT INTO stock_entries (product_id, entry_type, quantity, supplier_id, notes, recorded_by)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		entry.ProductID, entry.EntryType, entry.Quantity,
		entry.SupplierID, entry.Notes, entry.RecordedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting stock entry: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

func (r *MySQLStockEntryRepository) ListByProduct(ctx context.Context, productID int) ([]domain.StockEntry, error) {
	query := `
		SELECT id, product_id, entry_type, quantity, supplier_id, notes, recorded_by, created_at
		FROM stock_entries
		WHERE product_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("querying stock entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.StockEntry
	for rows.Next() {
		var e domain.StockEntry
		err := rows.Scan(
			&e.ID, &e.ProductID, &e.EntryType, &e.Quantity,
			&e.SupplierID, &e.Notes, &e.RecordedBy, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning stock entry row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stock entry rows: %w", err)
	}

	return entries, nil
}
