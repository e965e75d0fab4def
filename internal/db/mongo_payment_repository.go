package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"lifenotes-backend-go/internal/models"
)

// mongoPaymentRepository relies on the unique index on payments.sessionId.
type mongoPaymentRepository struct {
	coll *mongo.Collection
}

// NewMongoPaymentRepository creates a PaymentRepository backed by the payments collection.
func NewMongoPaymentRepository(db *mongo.Database) PaymentRepository {
	return &mongoPaymentRepository{coll: db.Collection(paymentsCollection)}
}

func (r *mongoPaymentRepository) Record(ctx context.Context, record *models.PaymentRecord) (bool, error) {
	if record.SessionID == "" {
		return false, errors.New("session ID cannot be empty for Record operation")
	}
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to record payment '%s': %w", record.SessionID, err)
	}
	return true, nil
}

func (r *mongoPaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	if err := r.coll.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("payment '%s' not found: %w", sessionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get payment '%s': %w", sessionID, err)
	}
	return &record, nil
}
