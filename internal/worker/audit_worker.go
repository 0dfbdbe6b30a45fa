package worker

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/taskboard/internal/domain"
	"github.com/spec-kit/taskboard/internal/events"
	"github.com/spec-kit/taskboard/internal/repository"
)

// AuditWorker consumes domain events and writes them to the audit trail.
// Writes happen off the request path; a failed audit insert is logged and
// never fails the originating request.
type AuditWorker struct {
	audits repository.AuditRepository
	logger *zap.Logger
}

// NewAuditWorker builds the worker.
func NewAuditWorker(audits repository.AuditRepository, logger *zap.Logger) *AuditWorker {
	return &AuditWorker{audits: audits, logger: logger}
}

// Register subscribes the worker to every event type.
func (w *AuditWorker) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range events.AllTypes() {
		dispatcher.Subscribe(eventType, w.handle)
	}
}

func (w *AuditWorker) handle(ctx context.Context, event events.Event) error {
	entry := &domain.AuditEntry{
		ID:         uuid.NewString(),
		TenantID:   event.TenantID,
		UserID:     event.ActorID,
		Action:     string(event.Type),
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		IPAddress:  event.IPAddress,
	}
	if err := w.audits.Insert(ctx, entry); err != nil {
		w.logger.Warn("audit insert failed",
			zap.String("action", entry.Action),
			zap.String("entity_id", entry.EntityID),
			zap.Error(err))
	}
	return nil
}
