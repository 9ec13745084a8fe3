package repository

import (
	"context"
	"database/sql"
	"fmt"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
)

const supplierColumns = `id, company_name, email, phone, address, is_active, created_at, updated_at`

type MySQLSupplierRepository struct {
	db *sql.DB
}

func NewMySQLSupplierRepository(db *sql.DB) *MySQLSupplierRepository {
	return &MySQLSupplierRepository{db: db}
}

func (r *MySQLSupplierRepository) FindByID(ctx context.Context, id int) (*domain.Supplier, error) {
	query := fmt.Sprintf(`SELECT %s FROM suppliers WHERE id = ?`, supplierColumns)

	var s domain.Supplier
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.CompanyName, &s.Email, &s.Phone, &s.Address,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("supplier with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying supplier by id: %w", err)
	}

	return &s, nil
}

// Search matches active suppliers by company name, for autocomplete.
func (r *MySQLSupplierRepository) Search(ctx context.Context, term string, limit int) ([]domain.Supplier, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM suppliers
		WHERE company_name LIKE ?
		  AND is_active = TRUE
		ORDER BY company_name
		LIMIT ?`, supplierColumns)

	rows, err := r.db.QueryContext(ctx, query, "%"+term+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("searching suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []domain.Supplier
	for rows.Next() {
		var s domain.Supplier
		if err := rows.Scan(
			&s.ID, &s.CompanyName, &s.Email, &s.Phone, &s.Address,
			&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning supplier row: %w", err)
		}
		suppliers = append(suppliers, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating supplier rows: %w", err)
	}

	return suppliers, nil
}
