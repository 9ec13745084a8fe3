package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"stockledger/internal/domain"
	apperrors "stockledger/internal/errors"
)

const invoiceColumns = `id, invoice_number, customer_id, total_amount, paid_amount,
			  status, due_date, notes, created_by, created_at, updated_at`

type MySQLInvoiceRepository struct {
	db *sql.DB
}

func NewMySQLInvoiceRepository(db *sql.DB) *MySQLInvoiceRepository {
	return &MySQLInvoiceRepository{db: db}
}

func scanInvoice(scan func(dest ...interface{}) error) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := scan(
		&inv.ID, &inv.InvoiceNumber, &inv.CustomerID, &inv.TotalAmount, &inv.PaidAmount,
		&inv.Status, &inv.DueDate, &inv.Notes, &inv.CreatedBy,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *MySQLInvoiceRepository) Insert(ctx context.Context, tx *sql.Tx, inv domain.Invoice) (int, error) {
	query := `
		INSERT INTO invoices (invoice_number, customer_id, total_amount, paid_amount,
		                      status, due_date, notes, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		inv.InvoiceNumber, inv.CustomerID, inv.TotalAmount, inv.PaidAmount,
		inv.Status, inv.DueDate, inv.Notes, inv.CreatedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting invoice: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

func (r *MySQLInvoiceRepository) FindByID(ctx context.Context, id int) (*domain.Invoice, error) {
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE id = ?`, invoiceColumns)

	inv, err := scanInvoice(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("invoice with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying invoice by id: %w", err)
	}

	return inv, nil
}

// FindByIDForUpdate locks the invoice row so concurrent payments against
// the same invoice serialize.
func (r *MySQLInvoiceRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.Invoice, error) {
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE id = ? FOR UPDATE`, invoiceColumns)

	inv, err := scanInvoice(tx.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("invoice with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying invoice for update: %w", err)
	}

	return inv, nil
}

func (r *MySQLInvoiceRepository) UpdatePayment(ctx context.Context, tx *sql.Tx, id int, paid decimal.Decimal, status string) error {
	query := `UPDATE invoices SET paid_amount = ?, status = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, paid, status, id)
	if err != nil {
		return fmt.Errorf("updating invoice payment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("invoice with id %d not found", id))
	}

	return nil
}

func (r *MySQLInvoiceRepository) ListOutstanding(ctx context.Context) ([]domain.Invoice, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM invoices
		WHERE status IN (?, ?)
		ORDER BY created_at DESC`, invoiceColumns)

	rows, err := r.db.QueryContext(ctx, query, domain.InvoiceStatusOutstanding, domain.InvoiceStatusPartial)
	if err != nil {
		return nil, fmt.Errorf("querying outstanding invoices: %w", err)
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice row: %w", err)
		}
		invoices = append(invoices, *inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return invoices, nil
}
