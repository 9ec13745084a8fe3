package repository

import (
	"context"
	"database/sql"
	"fmt"

	"stockledger/internal/domain"
)

type MySQLPaymentRepository struct {
	db *sql.DB
}

func NewMySQLPaymentRepository(db *sql.DB) *MySQLPaymentRepository {
	return &MySQLPaymentRepository{db: db}
}

func (r *MySQLPaymentRepository) Insert(ctx context.Context, tx *sql.Tx, payment domain.Payment) (int, error) {
	query := `
		INSERT INTO payments (invoice_id, amount, payment_method, reference_number,
		                      payment_date, notes, recorded_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		payment.InvoiceID, payment.Amount, payment.PaymentMethod, payment.ReferenceNumber,
		payment.PaymentDate, payment.Notes, payment.RecordedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting payment: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

func (r *MySQLPaymentRepository) ListByInvoice(ctx context.Context, invoiceID int) ([]domain.Payment, error) {
	query := `
		SELECT id, invoice_id, amount, payment_method, reference_number,
		       payment_date, notes, recorded_by, created_at
		FROM payments
		WHERE invoice_id = ?
		ORDER BY payment_date, id
	`

	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("querying payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(
			&p.ID, &p.InvoiceID, &p.Amount, &p.PaymentMethod, &p.ReferenceNumber,
			&p.PaymentDate, &p.Notes, &p.RecordedBy, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning payment row: %w", err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}

	return payments, nil
}
