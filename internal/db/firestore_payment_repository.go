package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"lifenotes-backend-go/internal/models"
)

// firestorePaymentRepository keys ledger documents by checkout session ID, so
// Create's AlreadyExists failure is the duplicate check.
type firestorePaymentRepository struct {
	client *firestore.Client
}

// NewFirestorePaymentRepository creates a new instance of firestorePaymentRepository.
func NewFirestorePaymentRepository(client *firestore.Client) PaymentRepository {
	if client == nil {
		panic("Firestore client is not initialized for PaymentRepository")
	}
	return &firestorePaymentRepository{client: client}
}

func (r *firestorePaymentRepository) Record(ctx context.Context, record *models.PaymentRecord) (bool, error) {
	if record.SessionID == "" {
		return false, errors.New("session ID cannot be empty for Record operation")
	}
	_, err := r.client.Collection(paymentsCollection).Doc(record.SessionID).Create(ctx, record)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return false, nil
		}
		return false, fmt.Errorf("failed to record payment '%s': %w", record.SessionID, err)
	}
	return true, nil
}

func (r *firestorePaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentRecord, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("empty session ID: %w", ErrNotFound)
	}
	docSnap, err := r.client.Collection(paymentsCollection).Doc(sessionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("payment '%s' not found: %w", sessionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get payment '%s': %w", sessionID, err)
	}
	var record models.PaymentRecord
	if err := docSnap.DataTo(&record); err != nil {
		return nil, fmt.Errorf("failed to decode payment data for '%s': %w", sessionID, err)
	}
	return &record, nil
}
