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

const productColumns = `id, subcategory_id, code, name, description, unit_price,
		       current_stock, minimum_stock, is_active, created_at, updated_at`

type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

func scanProduct(row *sql.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.SubCategoryID, &p.Code, &p.Name, &p.Description, &p.UnitPrice,
		&p.CurrentStock, &p.MinimumStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MySQLProductRepository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = ?`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}

	return product, nil
}

// FindByIDForUpdate acquires an exclusive row lock on the product for the
// duration of the transaction. Every stock mutation goes through this lock.
func (r *MySQLProductRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = ? FOR UPDATE`, productColumns)

	product, err := scanProduct(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product for update: %w", err)
	}

	return product, nil
}

// ApplyStockDelta shifts the denormalized stock counter. The caller must
// hold the row lock via FindByIDForUpdate in the same transaction.
func (r *MySQLProductRepository) ApplyStockDelta(ctx context.Context, tx *sql.Tx, id int, delta int) error {
	query := `UPDATE products SET current_stock = current_stock + ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("updating product stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}

	return nil
}

func (r *MySQLProductRepository) Search(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	sqlQuery := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE (code LIKE ? OR name LIKE ?)
		  AND is_active = 1
		ORDER BY code
		LIMIT ?`, productColumns)

	pattern := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, sqlQuery, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *MySQLProductRepository) ListLowStock(ctx context.Context) ([]domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE current_stock <= minimum_stock
		  AND is_active = 1
		ORDER BY code`, productColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying low stock products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Delete removes a product. Referencing rows (sales, invoice items, LPOs,
// stock entries) keep the delete from going through via foreign keys; the
// MySQL restriction error surfaces as a conflict.
func (r *MySQLProductRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1451 {
			return apperrors.NewConflictError(fmt.Sprintf("product with id %d is still referenced and cannot be deleted", id))
		}
		return fmt.Errorf("deleting product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}

	return nil
}

func collectProducts(rows *sql.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ID, &p.SubCategoryID, &p.Code, &p.Name, &p.Description, &p.UnitPrice,
			&p.CurrentStock, &p.MinimumStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}
