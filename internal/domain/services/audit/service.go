// Package audit records significant lifecycle events for later review.
package audit

import (
	"context"
	"fmt"

	"github.com/corebank-service/corebank_service/internal/domain/entities"
	"github.com/corebank-service/corebank_service/pkg/logger"
)

// Repository is the persistence surface for audit events.
type Repository interface {
	Create(ctx context.Context, event *entities.AuditEvent) error
}

// Service appends audit events. An audit failure never fails the
// business operation it describes; it is logged and swallowed.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService creates the audit service.
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Record appends an event of the given type with a formatted detail line.
func (s *Service) Record(ctx context.Context, eventType string, format string, args ...any) {
	event := &entities.AuditEvent{
		EventType: eventType,
		Details:   fmt.Sprintf(format, args...),
	}
	if err := s.repo.Create(ctx, event); err != nil {
		s.log.Error("audit record failed", "event_type", eventType, "error", err)
	}
}
