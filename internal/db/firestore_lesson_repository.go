package db

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"lifenotes-backend-go/internal/models"
)

// firestoreLessonRepository implements the LessonRepository interface using Firestore.
type firestoreLessonRepository struct {
	client *firestore.Client
}

// NewFirestoreLessonRepository creates a new instance of firestoreLessonRepository.
func NewFirestoreLessonRepository(client *firestore.Client) LessonRepository {
	if client == nil {
		panic("Firestore client is not initialized for LessonRepository")
	}
	return &firestoreLessonRepository{client: client}
}

// List queries lessons ordered by createdAt descending.
// Filtering on author or favorites together with the ordering needs a composite index.
func (r *firestoreLessonRepository) List(ctx context.Context, filter LessonFilter) ([]*models.Lesson, error) {
	query := r.client.Collection(lessonsCollection).Query
	if filter.AuthorEmail != "" {
		query = query.Where("author.email", "==", filter.AuthorEmail)
	}
	if filter.FavoritedBy != "" {
		query = query.Where("favorites", "array-contains", filter.FavoritedBy)
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	lessons := make([]*models.Lesson, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate lessons: %w", err)
		}
		var lesson models.Lesson
		if err := doc.DataTo(&lesson); err != nil {
			return nil, fmt.Errorf("failed to decode lesson data for ID '%s': %w", doc.Ref.ID, err)
		}
		lesson.ID = doc.Ref.ID
		lesson.Normalize()
		lessons = append(lessons, &lesson)
	}
	return lessons, nil
}

// GetByID retrieves a lesson document by its ID.
func (r *firestoreLessonRepository) GetByID(ctx context.Context, lessonID string) (*models.Lesson, error) {
	if lessonID == "" {
		return nil, fmt.Errorf("empty lesson ID: %w", ErrNotFound)
	}
	docSnap, err := r.client.Collection(lessonsCollection).Doc(lessonID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("lesson with ID '%s' not found: %w", lessonID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get lesson with ID '%s': %w", lessonID, err)
	}

	var lesson models.Lesson
	if err := docSnap.DataTo(&lesson); err != nil {
		return nil, fmt.Errorf("failed to decode lesson data for ID '%s': %w", lessonID, err)
	}
	lesson.ID = docSnap.Ref.ID
	lesson.Normalize()
	return &lesson, nil
}

// Create adds a new lesson document with an auto-generated ID and sets lesson.ID.
func (r *firestoreLessonRepository) Create(ctx context.Context, lesson *models.Lesson) (string, error) {
	docRef := r.client.Collection(lessonsCollection).NewDoc()
	lesson.ID = docRef.ID
	lesson.Normalize()

	if _, err := docRef.Create(ctx, lesson); err != nil {
		return "", fmt.Errorf("failed to create lesson: %w", err)
	}
	return docRef.ID, nil
}

// Update overwrites the given fields. Firestore's Update fails with NotFound
// when the document is missing, so it never creates a lesson.
func (r *firestoreLessonRepository) Update(ctx context.Context, lessonID string, fields map[string]interface{}) error {
	if lessonID == "" {
		return fmt.Errorf("empty lesson ID: %w", ErrNotFound)
	}
	if len(fields) == 0 {
		return errors.New("no fields to update")
	}
	_, err := r.client.Collection(lessonsCollection).Doc(lessonID).Update(ctx, toFirestoreUpdates(fields))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("lesson with ID '%s' not found for update: %w", lessonID, ErrNotFound)
		}
		return fmt.Errorf("failed to update lesson with ID '%s': %w", lessonID, err)
	}
	return nil
}

// Delete removes a lesson document. The Exists precondition turns a missing
// document into NotFound instead of a silent no-op.
func (r *firestoreLessonRepository) Delete(ctx context.Context, lessonID string) error {
	if lessonID == "" {
		return fmt.Errorf("empty lesson ID: %w", ErrNotFound)
	}
	_, err := r.client.Collection(lessonsCollection).Doc(lessonID).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("lesson with ID '%s' not found for deletion: %w", lessonID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete lesson with ID '%s': %w", lessonID, err)
	}
	return nil
}

// AppendComment reads the thread and writes it back with the comment appended,
// inside a transaction. ArrayUnion is not used because it drops an element
// equal to one already stored.
func (r *firestoreLessonRepository) AppendComment(ctx context.Context, lessonID string, comment models.Comment) error {
	if lessonID == "" {
		return fmt.Errorf("empty lesson ID: %w", ErrNotFound)
	}
	ref := r.client.Collection(lessonsCollection).Doc(lessonID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var lesson models.Lesson
		if err := snap.DataTo(&lesson); err != nil {
			return fmt.Errorf("failed to decode lesson data for ID '%s': %w", lessonID, err)
		}
		comments := append(lesson.Comments, comment)
		return tx.Update(ref, []firestore.Update{{Path: "comments", Value: comments}})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("lesson with ID '%s' not found for comment: %w", lessonID, ErrNotFound)
		}
		return fmt.Errorf("failed to append comment to lesson '%s': %w", lessonID, err)
	}
	return nil
}

// ToggleMember flips membership inside a transaction. Firestore retries the
// function on contention, so the set and its count are always written together
// from the same snapshot.
func (r *firestoreLessonRepository) ToggleMember(ctx context.Context, lessonID string, kind models.EngagementKind, email string) (models.ToggleResult, error) {
	if lessonID == "" {
		return models.ToggleResult{}, fmt.Errorf("empty lesson ID: %w", ErrNotFound)
	}
	ref := r.client.Collection(lessonsCollection).Doc(lessonID)

	var result models.ToggleResult
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var lesson models.Lesson
		if err := snap.DataTo(&lesson); err != nil {
			return fmt.Errorf("failed to decode lesson data for ID '%s': %w", lessonID, err)
		}
		members, isMember := toggleMembership(lesson.Members(kind), email)
		result = models.ToggleResult{Member: isMember, Count: len(members)}
		return tx.Update(ref, []firestore.Update{
			{Path: kind.SetField(), Value: members},
			{Path: kind.CountField(), Value: len(members)},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.ToggleResult{}, fmt.Errorf("lesson with ID '%s' not found for %s toggle: %w", lessonID, kind, ErrNotFound)
		}
		return models.ToggleResult{}, fmt.Errorf("failed to toggle %s on lesson '%s': %w", kind, lessonID, err)
	}
	return result, nil
}

// toFirestoreUpdates converts a field map into Firestore updates in a stable order.
func toFirestoreUpdates(fields map[string]interface{}) []firestore.Update {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	updates := make([]firestore.Update, 0, len(keys))
	for _, k := range keys {
		updates = append(updates, firestore.Update{Path: k, Value: fields[k]})
	}
	return updates
}
