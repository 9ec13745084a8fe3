// Package audit records who did what. Recording happens after the business
// transaction commits and is best effort: a failed audit write is logged,
// never surfaced to the caller.
package audit

import (
	"context"

	"go.uber.org/zap"

	"stockledger/internal/domain"
)

type LogRepository interface {
	Insert(ctx context.Context, log domain.AuditLog) (int, error)
}

type Recorder struct {
	repo   LogRepository
	logger *zap.Logger
}

func NewRecorder(repo LogRepository, logger *zap.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

func (r *Recorder) Record(ctx context.Context, action string, actor domain.Actor, description string) {
	_, err := r.repo.Insert(ctx, domain.AuditLog{
		Action:      action,
		UserID:      actor.UserID,
		Description: description,
	})
	if err != nil {
		r.logger.Error("failed to record audit log",
			zap.String("action", action),
			zap.String("userId", actor.UserID),
			zap.Error(err),
		)
	}
}
