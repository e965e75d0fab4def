package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"lifenotes-backend-go/internal/config"
)

const mongoConnectTimeout = 10 * time.Second

// ConnectMongo opens a MongoDB client with the stable v1 server API and pings the deployment.
func ConnectMongo(ctx context.Context, appConfig *config.Config, logger *zap.Logger) (*mongo.Client, error) {
	uri := appConfig.MongoConnectionURI()
	if uri == "" {
		return nil, fmt.Errorf("ConnectMongo: no MongoDB connection URI configured")
	}

	clientOpts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("MongoDB client connected", zap.String("database", appConfig.MongoDatabase))
	return client, nil
}

// NewMongoStore wires every repository to one database and makes sure the
// unique indexes the repositories rely on exist.
func NewMongoStore(ctx context.Context, client *mongo.Client, database string) (*Store, error) {
	db := client.Database(database)

	indexes := []struct {
		collection string
		field      string
	}{
		{usersCollection, "email"},
		{paymentsCollection, "sessionId"},
	}
	for _, idx := range indexes {
		_, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: idx.field, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to ensure unique index on %s.%s: %w", idx.collection, idx.field, err)
		}
	}

	return &Store{
		Lessons:  NewMongoLessonRepository(db),
		Users:    NewMongoUserRepository(db),
		Reports:  NewMongoReportRepository(db),
		Payments: NewMongoPaymentRepository(db),
		closeFn:  client.Disconnect,
	}, nil
}

// objectIDFromHex parses a document ID. Malformed IDs cannot match any
// document, so they are reported as ErrNotFound.
func objectIDFromHex(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid document ID '%s': %w", id, ErrNotFound)
	}
	return oid, nil
}
