package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lifenotes-backend-go/internal/config"
)

// Open connects the backend selected by STORE_DRIVER and returns its Store.
// The caller owns the Store and must Close it on shutdown.
func Open(ctx context.Context, appConfig *config.Config, logger *zap.Logger) (*Store, error) {
	switch appConfig.StoreDriver {
	case config.StoreDriverFirestore:
		client, err := NewFirestoreClient(ctx, appConfig, logger)
		if err != nil {
			return nil, err
		}
		return NewFirestoreStore(client), nil
	case config.StoreDriverMongo:
		client, err := ConnectMongo(ctx, appConfig, logger)
		if err != nil {
			return nil, err
		}
		store, err := NewMongoStore(ctx, client, appConfig.MongoDatabase)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return store, nil
	case config.StoreDriverMemory:
		logger.Warn("Using in-memory store; data is lost on restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", appConfig.StoreDriver)
	}
}
