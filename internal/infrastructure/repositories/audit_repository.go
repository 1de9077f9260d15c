package repositories

import (
	"context"
	"fmt"

	"github.com/corebank-service/corebank_service/internal/domain/entities"
	"github.com/corebank-service/corebank_service/internal/infrastructure/database"
)

// AuditRepository appends audit events. Append-only, like the entry log.
type AuditRepository struct {
	q database.Querier
}

// NewAuditRepository creates an audit repository over the given unit of work.
func NewAuditRepository(q database.Querier) *AuditRepository {
	return &AuditRepository{q: q}
}

// Create appends an audit event.
func (r *AuditRepository) Create(ctx context.Context, event *entities.AuditEvent) error {
	query := `
		INSERT INTO audit_log (event_type, details)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.q.QueryRowxContext(ctx, query, event.EventType, event.Details).
		Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("create audit event: %w", err)
	}

	return nil
}
