package repository

import (
	"context"
	"database/sql"
	"fmt"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
)

const customerColumns = `id, company_name, email, phone, address, payment_type, is_active, created_at, updated_at`

type MySQLCustomerRepository struct {
	db *sql.DB
}

func NewMySQLCustomerRepository(db *sql.DB) *MySQLCustomerRepository {
	return &MySQLCustomerRepository{db: db}
}

func (r *MySQLCustomerRepository) FindByID(ctx context.Context, id int) (*domain.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = ?`, customerColumns)

	var c domain.Customer
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.CompanyName, &c.Email, &c.Phone, &c.Address,
		&c.PaymentType, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("customer with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying customer by id: %w", err)
	}

	return &c, nil
}

func (r *MySQLCustomerRepository) Search(ctx context.Context, term string, limit int) ([]domain.Customer, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM customers
		WHERE company_name LIKE ?
		  AND is_active = TRUE
		ORDER BY company_name
		LIMIT ?`, customerColumns)

	rows, err := r.db.QueryContext(ctx, query, "%"+term+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("searching customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(
			&c.ID, &c.CompanyName, &c.Email, &c.Phone, &c.Address,
			&c.PaymentType, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning customer row: %w", err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customer rows: %w", err)
	}

	return customers, nil
}
