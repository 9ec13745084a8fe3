package repository

import (
	"context"
	"database/sql"
	"fmt"

	"stockledger/internal/domain"
)

type MySQLInvoiceItemRepository struct {
	db *sql.DB
}

func NewMySQLInvoiceItemRepository(db *sql.DB) *MySQLInvoiceItemRepository {
	return &MySQLInvoiceItemRepository{db: db}
}

func (r *MySQLInvoiceItemRepository) Insert(ctx context.Context, tx *sql.Tx, item domain.InvoiceItem) (int, error) {
	query := `
		INSERT INTO invoice_items (invoice_id, product_id, quantity, unit_price, subtotal)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		item.InvoiceID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting invoice item: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

func (r *MySQLInvoiceItemRepository) ListByInvoice(ctx context.Context, invoiceID int) ([]domain.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, product_id, quantity, unit_price, subtotal
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("querying invoice items: %w", err)
	}
	defer rows.Close()

	var items []domain.InvoiceItem
	for rows.Next() {
		var it domain.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scanning invoice item row: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice item rows: %w", err)
	}

	return items, nil
}
