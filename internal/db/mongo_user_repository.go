package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lifenotes-backend-go/internal/models"
)

type mongoUser struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	models.User `bson:",inline"`
}

func (d *mongoUser) toModel() *models.User {
	user := d.User
	user.ID = d.ID.Hex()
	return &user
}

// mongoUserRepository relies on the unique index on users.email created by NewMongoStore.
type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a UserRepository backed by the users collection.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(usersCollection)}
}

func (r *mongoUserRepository) List(ctx context.Context) ([]*models.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]*models.User, 0)
	for cursor.Next(ctx) {
		var doc mongoUser
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user '%s' not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", email, err)
	}
	return doc.toModel(), nil
}

// Upsert writes profile fields with $set and server-managed fields with
// $setOnInsert, so an existing role or premium flag survives. Two concurrent
// first logins race on the unique index; the loser retries as a plain update.
func (r *mongoUserRepository) Upsert(ctx context.Context, user *models.User) (bool, error) {
	if user.Email == "" {
		return false, errors.New("user email cannot be empty for Upsert operation")
	}

	set := bson.M{"updatedAt": user.UpdatedAt}
	if user.Name != "" {
		set["name"] = user.Name
	}
	if user.PhotoURL != "" {
		set["photoURL"] = user.PhotoURL
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"role":      user.Role,
			"isPremium": user.IsPremium,
			"createdAt": user.CreatedAt,
		},
	}
	filter := bson.M{"email": user.Email}

	res, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		_, err = r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
		if err != nil {
			return false, fmt.Errorf("failed to update user '%s' after upsert race: %w", user.Email, err)
		}
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to upsert user '%s': %w", user.Email, err)
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	return res.UpsertedCount == 1, nil
}

func (r *mongoUserRepository) Update(ctx context.Context, email string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return errors.New("no fields to update")
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("failed to update user '%s': %w", email, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user '%s' not found for update: %w", email, ErrNotFound)
	}
	return nil
}

// SetPremium only matches users that are not premium yet, so a repeated call
// writes nothing. A zero match is then told apart from a missing user.
func (r *mongoUserRepository) SetPremium(ctx context.Context, email, sessionID string, at time.Time) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"email": email, "isPremium": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{
			"isPremium":        true,
			"premiumSince":     at,
			"paymentSessionId": sessionID,
			"updatedAt":        at,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to set premium for user '%s': %w", email, err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to look up user '%s': %w", email, err)
	}
	if n == 0 {
		return false, fmt.Errorf("user '%s' not found for premium upgrade: %w", email, ErrNotFound)
	}
	return false, nil
}
