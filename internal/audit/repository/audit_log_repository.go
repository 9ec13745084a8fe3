package repository

import (
	"context"
	"database/sql"
	"fmt"

	"stockledger/internal/domain"
)

type MySQLAuditLogRepository struct {
	db *sql.DB
}

func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}

func (r *MySQLAuditLogRepository) Insert(ctx context.Context, log domain.AuditLog) (int, error) {
	query := `
		INSERT INTO audit_logs (action, user_id, description, ip_address)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, log.Action, log.UserID, log.Description, log.IPAddress)
	if err != nil {
		return 0, fmt.Errorf("inserting audit log: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

func (r *MySQLAuditLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	query := `
		SELECT id, action, user_id, description, ip_address, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(&l.ID, &l.Action, &l.UserID, &l.Description, &l.IPAddress, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning audit log row: %w", err)
		}
		logs = append(logs, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit log rows: %w", err)
	}

	return logs, nil
}
