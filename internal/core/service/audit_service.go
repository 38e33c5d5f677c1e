package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gatehouse/identity-service/internal/core/domain"
	"github.com/gatehouse/identity-service/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis). Claim reports
// whether this call was the first delivery of the event; checking and
// marking are one atomic operation, so two workers racing the same
// redelivery cannot both claim it.
type DedupChecker interface {
	Claim(ctx context.Context, email, kind string, ts time.Time) (bool, error)
}

type auditService struct {
	repo  ports.AuditRepository
	dedup DedupChecker
	log   zerolog.Logger
}

// NewAuditService returns an AuditService that deduplicates redelivered
// events and persists the rest to the audit trail.
func NewAuditService(repo ports.AuditRepository, dedup DedupChecker, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, dedup: dedup, log: log}
}

// Process deduplicates and persists a single auth event. A failure here is
// reported to the caller for logging only; it must never surface into the
// auth operation that produced the event.
func (s *auditService) Process(ctx context.Context, in ports.AuthEventInput) error {
	kind := string(in.Kind)

	claimed, err := s.dedup.Claim(ctx, in.Email, kind, in.Timestamp)
	if err != nil {
		s.log.Warn().Err(err).Str("kind", kind).Msg("dedup claim failed, processing anyway")
	} else if !claimed {
		s.log.Debug().Str("kind", kind).Msg("duplicate auth event skipped")
		return nil
	}

	event := &domain.AuthEvent{
		Email:     in.Email,
		UserID:    in.UserID,
		Kind:      in.Kind,
		Timestamp: in.Timestamp,
		Source:    in.Source,
	}
	if err := s.repo.Insert(ctx, event); err != nil {
		return fmt.Errorf("audit insert: %w", err)
	}

	s.log.Debug().
		Str("kind", kind).
		Str("user_id", in.UserID).
		Msg("auth event recorded")

	return nil
}
