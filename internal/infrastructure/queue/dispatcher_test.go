package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gatehouse/identity-service/internal/core/domain"
	"github.com/gatehouse/identity-service/internal/core/ports"
)

type captureAudit struct {
	mu     sync.Mutex
	events []ports.AuthEventInput
}

func (a *captureAudit) Process(_ context.Context, e ports.AuthEventInput) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
	return nil
}

func (a *captureAudit) len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}

func TestDispatcher_DeliversEvents(t *testing.T) {
	audit := &captureAudit{}
	d := NewDispatcher(2, audit, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	const n = 20
	for i := 0; i < n; i++ {
		d.Record(ports.AuthEventInput{
			Email:     "a@x.com",
			Kind:      domain.EventLoginSucceeded,
			Timestamp: time.Now().UTC(),
		})
	}

	deadline := time.After(2 * time.Second)
	for audit.len() < n {
		select {
		case <-deadline:
			t.Fatalf("delivered %d of %d events before timeout", audit.len(), n)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestDispatcher_SameAccountSameWorker(t *testing.T) {
	d := NewDispatcher(4, &captureAudit{}, zerolog.Nop())

	first := d.shardIndex("user@x.com")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("user@x.com"); got != first {
			t.Fatalf("shard index changed: %d vs %d", got, first)
		}
	}
}

func TestNewDispatcher_DefaultWorkers(t *testing.T) {
	d := NewDispatcher(0, &captureAudit{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}
