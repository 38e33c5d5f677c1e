package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gatehouse/identity-service/internal/core/domain"
)

const auditCollection = "auth_events"

// AuditRepository appends auth events to the audit-trail collection.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAuthEvent struct {
	Email     string `bson:"email"`
	UserID    string `bson:"user_id,omitempty"`
	Kind      string `bson:"kind"`
	Timestamp int64  `bson:"timestamp"`
	Source    string `bson:"source,omitempty"`
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuthEvent) error {
	doc := mongoAuthEvent{
		Email:     event.Email,
		UserID:    event.UserID,
		Kind:      string(event.Kind),
		Timestamp: event.Timestamp.Unix(),
		Source:    event.Source,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
