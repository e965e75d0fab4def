package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"lifenotes-backend-go/internal/models"
)

type firestoreReportRepository struct {
	client *firestore.Client
}

// NewFirestoreReportRepository creates a new instance of firestoreReportRepository.
func NewFirestoreReportRepository(client *firestore.Client) ReportRepository {
	if client == nil {
		panic("Firestore client is not initialized for ReportRepository")
	}
	return &firestoreReportRepository{client: client}
}

func (r *firestoreReportRepository) Create(ctx context.Context, report *models.Report) (string, error) {
	docRef := r.client.Collection(reportsCollection).NewDoc()
	report.ID = docRef.ID
	if _, err := docRef.Create(ctx, report); err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	return docRef.ID, nil
}

func (r *firestoreReportRepository) List(ctx context.Context) ([]*models.Report, error) {
	iter := r.client.Collection(reportsCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	reports := make([]*models.Report, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate reports: %w", err)
		}
		var report models.Report
		if err := doc.DataTo(&report); err != nil {
			return nil, fmt.Errorf("failed to decode report data for ID '%s': %w", doc.Ref.ID, err)
		}
		report.ID = doc.Ref.ID
		reports = append(reports, &report)
	}
	return reports, nil
}
