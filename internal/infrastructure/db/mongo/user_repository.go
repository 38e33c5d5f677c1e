package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gatehouse/identity-service/internal/core/domain"
)

const userCollection = "users"

// UserRepository persists users in MongoDB. A single-document update is
// atomic in Mongo, which gives UpdateFields its per-record serialization;
// updates to different documents never contend.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(userCollection)}
}

// EnsureIndexes creates the unique email index and the sparse unique
// token indexes. Sparse is required: most users have no session or reset
// token, and a plain unique index would reject the second unset value.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	uniqueSparse := options.Index().SetUnique(true).SetSparse(true)

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "session_token", Value: 1}}, Options: uniqueSparse},
		{Keys: bson.D{{Key: "reset_token", Value: 1}}, Options: uniqueSparse},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

type mongoUser struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Email          string             `bson:"email"`
	HashedPassword string             `bson:"hashed_password"`
	SessionToken   string             `bson:"session_token,omitempty"`
	ResetToken     string             `bson:"reset_token,omitempty"`
	CreatedAt      int64              `bson:"created_at"`
	UpdatedAt      int64              `bson:"updated_at"`
}

func (r *UserRepository) Create(ctx context.Context, email, hashedPassword string) (*domain.User, error) {
	now := time.Now().UTC()
	doc := mongoUser{
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      now.Unix(),
		UpdatedAt:      now.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	return &domain.User{
		ID:             id.Hex(),
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"session_token": token})
}

func (r *UserRepository) FindByResetToken(ctx context.Context, token string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"reset_token": token})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &domain.User{
		ID:             mu.ID.Hex(),
		Email:          mu.Email,
		HashedPassword: mu.HashedPassword,
		SessionToken:   mu.SessionToken,
		ResetToken:     mu.ResetToken,
		CreatedAt:      unixToTime(mu.CreatedAt),
		UpdatedAt:      unixToTime(mu.UpdatedAt),
	}, nil
}

// UpdateFields applies the changeset to one user document in a single
// update command: set values under $set, cleared values under $unset.
func (r *UserRepository) UpdateFields(ctx context.Context, id string, changes domain.Changeset) error {
	if err := changes.Validate(); err != nil {
		return err
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.UpdateByID(ctx, oid, changesetUpdate(changes))
	if err != nil {
		return fmt.Errorf("update user fields: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// UpdateFieldsWhere folds the guard into the update filter, so Mongo
// evaluates the compare and the write as one atomic document operation.
// MatchedCount==0 covers both a missing user and a moved guard value.
func (r *UserRepository) UpdateFieldsWhere(ctx context.Context, id string, field domain.Field, expected string, changes domain.Changeset) error {
	if err := changes.Validate(); err != nil {
		return err
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	filter := bson.M{"_id": oid}
	if expected == "" {
		// Cleared token fields are $unset, so "unset" means absent or
		// empty, and nil matches a missing field.
		filter[string(field)] = bson.M{"$in": bson.A{nil, ""}}
	} else {
		filter[string(field)] = expected
	}

	res, err := r.coll.UpdateOne(ctx, filter, changesetUpdate(changes))
	if err != nil {
		return fmt.Errorf("update user fields: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func changesetUpdate(changes domain.Changeset) bson.M {
	set := bson.M{"updated_at": time.Now().UTC().Unix()}
	unset := bson.M{}
	for field, value := range changes {
		if value == nil {
			unset[string(field)] = ""
			continue
		}
		set[string(field)] = *value
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
