package ports

import (
	"context"
	"time"

	"github.com/gatehouse/identity-service/internal/core/domain"
)

// AuthEventInput is the DTO handed from the auth flow to the audit pipeline.
type AuthEventInput struct {
	Email     string
	UserID    string
	Kind      domain.AuthEventKind
	Timestamp time.Time
	Source    string
}

// AuthEventSink accepts auth events for asynchronous delivery. Implementations
// must not block the auth operation that produced the event.
type AuthEventSink interface {
	Record(event AuthEventInput)
}

// AuditService processes recorded auth events: deduplicates redeliveries,
// persists them to the audit trail, and updates metrics.
type AuditService interface {
	Process(ctx context.Context, event AuthEventInput) error
}

// AuditRepository persists audit-trail entries.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuthEvent) error
}
