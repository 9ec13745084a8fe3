package repository

import (
	"context"
	"database/sql"
	"fmt"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
)

const lpoColumns = `id, lpo_number, supplier_id, product_id, ordered_quantity,
		      delivered_quantity, status, order_date, expected_delivery,
		      actual_delivery, notes, created_by, created_at, updated_at`

type MySQLLPORepository struct {
	db *sql.DB
}

func NewMySQLLPORepository(db *sql.DB) *MySQLLPORepository {
	return &MySQLLPORepository{db: db}
}

func scanLPO(scan func(dest ...interface{}) error) (*domain.LPO, error) {
	var l domain.LPO
	err := scan(
		&l.ID, &l.LPONumber, &l.SupplierID, &l.ProductID, &l.OrderedQuantity,
		&l.DeliveredQuantity, &l.Status, &l.OrderDate, &l.ExpectedDelivery,
		&l.ActualDelivery, &l.Notes, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *MySQLLPORepository) Insert(ctx context.Context, tx *sql.Tx, lpo domain.LPO) (int, error) {
	query := `
		INSERT INTO lpos (lpo_number, supplier_id, product_id, ordered_quantity,
		                  delivered_quantity, status, order_date, expected_delivery,
		                  notes, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		lpo.LPONumber, lpo.SupplierID, lpo.ProductID, lpo.OrderedQuantity,
		lpo.DeliveredQuantity, lpo.Status, lpo.OrderDate, lpo.ExpectedDelivery,
		lpo.Notes, lpo.CreatedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting lpo: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

func (r *MySQLLPORepository) FindByID(ctx context.Context, id int) (*domain.LPO, error) {
	query := fmt.Sprintf(`SELECT %s FROM lpos WHERE id = ?`, lpoColumns)

	lpo, err := scanLPO(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("lpo with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying lpo by id: %w", err)
	}

	return lpo, nil
}

// FindByIDForUpdate locks the LPO row; it is taken before the product lock
// so delivery recording serializes per order.
func (r *MySQLLPORepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.LPO, error) {
	query := fmt.Sprintf(`SELECT %s FROM lpos WHERE id = ? FOR UPDATE`, lpoColumns)

	lpo, err := scanLPO(tx.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("lpo with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying lpo for update: %w", err)
	}

	return lpo, nil
}

func (r *MySQLLPORepository) UpdateDelivery(ctx context.Context, tx *sql.Tx, lpo domain.LPO) error {
	query := `
		UPDATE lpos
		SET delivered_quantity = ?, status = ?, actual_delivery = ?
		WHERE id = ?
	`

	result, err := tx.ExecContext(ctx, query, lpo.DeliveredQuantity, lpo.Status, lpo.ActualDelivery, lpo.ID)
	if err != nil {
		return fmt.Errorf("updating lpo delivery: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("lpo with id %d not found", lpo.ID))
	}

	return nil
}

func (r *MySQLLPORepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id int, status string) error {
	query := `UPDATE lpos SET status = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating lpo status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("lpo with id %d not found", id))
	}

	return nil
}

func (r *MySQLLPORepository) ListPending(ctx context.Context) ([]domain.LPO, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM lpos
		WHERE status IN (?, ?)
		ORDER BY order_date DESC`, lpoColumns)

	rows, err := r.db.QueryContext(ctx, query, domain.LPOStatusPending, domain.LPOStatusPartial)
	if err != nil {
		return nil, fmt.Errorf("querying pending lpos: %w", err)
	}
	defer rows.Close()

	var lpos []domain.LPO
	for rows.Next() {
		lpo, err := scanLPO(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning lpo row: %w", err)
		}
		lpos = append(lpos, *lpo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lpo rows: %w", err)
	}

	return lpos, nil
}
