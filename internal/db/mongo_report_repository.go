package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lifenotes-backend-go/internal/models"
)

type mongoReport struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	models.Report `bson:",inline"`
}

type mongoReportRepository struct {
	coll *mongo.Collection
}

// NewMongoReportRepository creates a ReportRepository backed by the reports collection.
func NewMongoReportRepository(db *mongo.Database) ReportRepository {
	return &mongoReportRepository{coll: db.Collection(reportsCollection)}
}

func (r *mongoReportRepository) Create(ctx context.Context, report *models.Report) (string, error) {
	doc := mongoReport{ID: primitive.NewObjectID(), Report: *report}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	report.ID = doc.ID.Hex()
	return report.ID, nil
}

func (r *mongoReportRepository) List(ctx context.Context) ([]*models.Report, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer cursor.Close(ctx)

	reports := make([]*models.Report, 0)
	for cursor.Next(ctx) {
		var doc mongoReport
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode report: %w", err)
		}
		report := doc.Report
		report.ID = doc.ID.Hex()
		reports = append(reports, &report)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}
	return reports, nil
}
