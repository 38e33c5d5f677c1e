package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gatehouse/identity-service/internal/api/metrics"
)

const dedupTTL = time.Hour

// DedupChecker provides idempotency checks for audit-event delivery,
// backed by Redis. Key format: audit:<email>:<kind>:<unix_timestamp>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// Claim marks this auth event as delivered and reports whether the call
// was first. SETNX folds the check and the mark into one command, so two
// workers racing the same redelivery cannot both claim it. The key
// expires after dedupTTL.
func (d *DedupChecker) Claim(ctx context.Context, email, kind string, ts time.Time) (bool, error) {
	claimed, err := d.client.SetNX(ctx, d.key(email, kind, ts), "1", dedupTTL).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	if claimed {
		metrics.AuditDedupTotal.WithLabelValues("miss").Inc()
	} else {
		metrics.AuditDedupTotal.WithLabelValues("hit").Inc()
	}
	return claimed, nil
}

func (d *DedupChecker) key(email, kind string, ts time.Time) string {
	// Nanosecond precision: two same-kind events for one account in the
	// same second are distinct events, not redeliveries.
	return fmt.Sprintf("audit:%s:%s:%d", email, kind, ts.UnixNano())
}
