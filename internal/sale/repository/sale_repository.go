package repository

import (
	"context"
	"database/sql"
	"fmt"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
)

const saleColumns = `id, sale_number, product_id, customer_id, quantity_ordered,
		       quantity_supplied, supply_status, unit_price, total_amount,
		       lpo_quotation_number, delivery_number, notes, recorded_by,
		       created_at, updated_at`

type MySQLSaleRepository struct {
	db *sql.DB
}

func NewMySQLSaleRepository(db *sql.DB) *MySQLSaleRepository {
	return &MySQLSaleRepository{db: db}
}

func scanSale(scan func(dest ...interface{}) error) (*domain.Sale, error) {
	var s domain.Sale
	err := scan(
		&s.ID, &s.SaleNumber, &s.ProductID, &s.CustomerID, &s.QuantityOrdered,
		&s.QuantitySupplied, &s.SupplyStatus, &s.UnitPrice, &s.TotalAmount,
		&s.LPOQuotationNumber, &s.DeliveryNumber, &s.Notes, &s.RecordedBy,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *MySQLSaleRepository) Insert(ctx context.Context, tx *sql.Tx, sale domain.Sale) (int, error) {
	query := `
		INSERT INTO sales (sale_number, product_id, customer_id, quantity_ordered,
		                   quantity_supplied, supply_status, unit_price, total_amount,
		                   lpo_quotation_number, delivery_number, notes, recorded_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		sale.SaleNumber, sale.ProductID, sale.CustomerID, sale.QuantityOrdered,
		sale.QuantitySupplied, sale.SupplyStatus, sale.UnitPrice, sale.TotalAmount,
		sale.LPOQuotationNumber, sale.DeliveryNumber, sale.Notes, sale.RecordedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting sale: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

func (r *MySQLSaleRepository) FindByID(ctx context.Context, id int) (*domain.Sale, error) {
	query := fmt.Sprintf(`SELECT %s FROM sales WHERE id = ?`, saleColumns)

	sale, err := scanSale(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("sale with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying sale by id: %w", err)
	}

	return sale, nil
}

// FindByIDForUpdate locks the sale row so concurrent supply updates against
// the same sale serialize before they reach the product row.
func (r *MySQLSaleRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.Sale, error) {
	query := fmt.Sprintf(`SELECT %s FROM sales WHERE id = ? FOR UPDATE`, saleColumns)

	sale, err := scanSale(tx.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("sale with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying sale for update: %w", err)
	}

	return sale, nil
}

func (r *MySQLSaleRepository) UpdateSupply(ctx context.Context, tx *sql.Tx, id int, quantitySupplied int, status string) error {
	query := `UPDATE sales SET quantity_supplied = ?, supply_status = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, quantitySupplied, status, id)
	if err != nil {
		return fmt.Errorf("updating sale supply: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("sale with id %d not found", id))
	}

	return nil
}

func (r *MySQLSaleRepository) ListOutstanding(ctx context.Context) ([]domain.Sale, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sales
		WHERE supply_status IN (?, ?)
		ORDER BY created_at DESC`, saleColumns)

	return r.list(ctx, query, domain.SupplyStatusNotSupplied, domain.SupplyStatusPartiallySupplied)
}

func (r *MySQLSaleRepository) ListOutstandingByCustomer(ctx context.Context, customerID int) ([]domain.Sale, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sales
		WHERE customer_id = ?
		  AND supply_status IN (?, ?)
		ORDER BY created_at DESC`, saleColumns)

	return r.list(ctx, query, customerID, domain.SupplyStatusNotSupplied, domain.SupplyStatusPartiallySupplied)
}

func (r *MySQLSaleRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Sale, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sales: %w", err)
	}
	defer rows.Close()

	var sales []domain.Sale
	for rows.Next() {
		sale, err := scanSale(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning sale row: %w", err)
		}
		sales = append(sales, *sale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sale rows: %w", err)
	}

	return sales, nil
}
