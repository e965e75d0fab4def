package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lifenotes-backend-go/internal/models"
)

// mongoLesson is the stored shape of a lesson: the model plus its ObjectID.
type mongoLesson struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	models.Lesson `bson:",inline"`
}

func (d *mongoLesson) toModel() *models.Lesson {
	lesson := d.Lesson
	lesson.ID = d.ID.Hex()
	lesson.Normalize()
	return &lesson
}

type mongoLessonRepository struct {
	coll *mongo.Collection
}

// NewMongoLessonRepository creates a LessonRepository backed by the lessons collection.
func NewMongoLessonRepository(db *mongo.Database) LessonRepository {
	return &mongoLessonRepository{coll: db.Collection(lessonsCollection)}
}

func (r *mongoLessonRepository) List(ctx context.Context, filter LessonFilter) ([]*models.Lesson, error) {
	query := bson.M{}
	if filter.AuthorEmail != "" {
		query["author.email"] = filter.AuthorEmail
	}
	if filter.FavoritedBy != "" {
		query["favorites"] = filter.FavoritedBy
	}

	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer cursor.Close(ctx)

	lessons := make([]*models.Lesson, 0)
	for cursor.Next(ctx) {
		var doc mongoLesson
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode lesson: %w", err)
		}
		lessons = append(lessons, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lessons: %w", err)
	}
	return lessons, nil
}

func (r *mongoLessonRepository) GetByID(ctx context.Context, lessonID string) (*models.Lesson, error) {
	oid, err := objectIDFromHex(lessonID)
	if err != nil {
		return nil, err
	}
	var doc mongoLesson
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("lesson with ID '%s' not found: %w", lessonID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get lesson with ID '%s': %w", lessonID, err)
	}
	return doc.toModel(), nil
}

func (r *mongoLessonRepository) Create(ctx context.Context, lesson *models.Lesson) (string, error) {
	lesson.Normalize()
	doc := mongoLesson{ID: primitive.NewObjectID(), Lesson: *lesson}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create lesson: %w", err)
	}
	lesson.ID = doc.ID.Hex()
	return lesson.ID, nil
}

func (r *mongoLessonRepository) Update(ctx context.Context, lessonID string, fields map[string]interface{}) error {
	oid, err := objectIDFromHex(lessonID)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return errors.New("no fields to update")
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("failed to update lesson with ID '%s': %w", lessonID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("lesson with ID '%s' not found for update: %w", lessonID, ErrNotFound)
	}
	return nil
}

func (r *mongoLessonRepository) Delete(ctx context.Context, lessonID string) error {
	oid, err := objectIDFromHex(lessonID)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete lesson with ID '%s': %w", lessonID, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("lesson with ID '%s' not found for deletion: %w", lessonID, ErrNotFound)
	}
	return nil
}

func (r *mongoLessonRepository) AppendComment(ctx context.Context, lessonID string, comment models.Comment) error {
	oid, err := objectIDFromHex(lessonID)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$push": bson.M{"comments": comment}})
	if err != nil {
		return fmt.Errorf("failed to append comment to lesson '%s': %w", lessonID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("lesson with ID '%s' not found for comment: %w", lessonID, ErrNotFound)
	}
	return nil
}

// ToggleMember runs a single pipeline update: the set is filtered or extended
// depending on current membership and the counter is recomputed from it.
func (r *mongoLessonRepository) ToggleMember(ctx context.Context, lessonID string, kind models.EngagementKind, email string) (models.ToggleResult, error) {
	oid, err := objectIDFromHex(lessonID)
	if err != nil {
		return models.ToggleResult{}, err
	}

	setField := kind.SetField()
	current := bson.M{"$ifNull": bson.A{"$" + setField, bson.A{}}}
	member := bson.M{"$literal": email}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			setField: bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{member, current}},
				bson.M{"$filter": bson.M{
					"input": current,
					"as":    "m",
					"cond":  bson.M{"$ne": bson.A{"$$m", member}},
				}},
				bson.M{"$concatArrays": bson.A{current, bson.A{member}}},
			}},
		}}},
		{{Key: "$set", Value: bson.M{
			kind.CountField(): bson.M{"$size": "$" + setField},
		}}},
	}

	var doc mongoLesson
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ToggleResult{}, fmt.Errorf("lesson with ID '%s' not found for %s toggle: %w", lessonID, kind, ErrNotFound)
		}
		return models.ToggleResult{}, fmt.Errorf("failed to toggle %s on lesson '%s': %w", kind, lessonID, err)
	}
	members := doc.Members(kind)
	return models.ToggleResult{Member: containsString(members, email), Count: len(members)}, nil
}
