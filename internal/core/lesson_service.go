package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"lifenotes-backend-go/internal/db"
	"lifenotes-backend-go/internal/models"
)

// Lesson enum values.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
	AccessFree        = "free"
	AccessPremium     = "premium"
)

// editableLessonFields maps patch keys to their allowed values. A nil slice allows any string.
var editableLessonFields = map[string][]string{
	"title":         nil,
	"content":       nil,
	"category":      nil,
	"emotionalTone": nil,
	"imageURL":      nil,
	"visibility":    {VisibilityPublic, VisibilityPrivate},
	"accessLevel":   {AccessFree, AccessPremium},
}

// lessonService implements the LessonService interface.
type lessonService struct {
	lessonRepo db.LessonRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewLessonService creates a new LessonService instance.
func NewLessonService(lr db.LessonRepository, logger *zap.Logger) LessonService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &lessonService{
		lessonRepo: lr,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *lessonService) ListLessons(ctx context.Context, authorEmail string) ([]*models.Lesson, error) {
	lessons, err := s.lessonRepo.List(ctx, db.LessonFilter{AuthorEmail: normalizeEmail(authorEmail)})
	if err != nil {
		return nil, storeError("list lessons", err)
	}
	return lessons, nil
}

func (s *lessonService) ListFavorites(ctx context.Context, email string) ([]*models.Lesson, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, invalidRequest("email is required")
	}
	lessons, err := s.lessonRepo.List(ctx, db.LessonFilter{FavoritedBy: email})
	if err != nil {
		return nil, storeError("list favorites", err)
	}
	return lessons, nil
}

func (s *lessonService) GetLesson(ctx context.Context, lessonID string) (*models.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, s.lessonError("get lesson", lessonID, err)
	}
	return lesson, nil
}

// CreateLesson stores a new lesson with empty engagement and server-side timestamps.
func (s *lessonService) CreateLesson(ctx context.Context, req models.CreateLessonRequest) (*models.Lesson, error) {
	authorEmail := normalizeEmail(req.Author.Email)
	if authorEmail == "" {
		return nil, invalidRequest("author email is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, invalidRequest("content is required")
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}
	accessLevel := req.AccessLevel
	if accessLevel == "" {
		accessLevel = AccessFree
	}
	if err := checkLessonValue("visibility", visibility); err != nil {
		return nil, err
	}
	if err := checkLessonValue("accessLevel", accessLevel); err != nil {
		return nil, err
	}

	now := s.now()
	lesson := &models.Lesson{
		Title:         strings.TrimSpace(req.Title),
		Content:       req.Content,
		Category:      req.Category,
		EmotionalTone: req.EmotionalTone,
		ImageURL:      req.ImageURL,
		Visibility:    visibility,
		AccessLevel:   accessLevel,
		Author: models.Author{
			Name:     req.Author.Name,
			Email:    authorEmail,
			PhotoURL: req.Author.PhotoURL,
		},
		Likes:     []string{},
		Favorites: []string{},
		Comments:  []models.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	lessonID, err := s.lessonRepo.Create(ctx, lesson)
	if err != nil {
		return nil, storeError("create lesson", err)
	}
	lesson.ID = lessonID
	s.logger.Info("Lesson created", zap.String("lessonID", lessonID), zap.String("author", authorEmail))
	return lesson, nil
}

// UpdateLesson validates the whole patch before writing anything.
func (s *lessonService) UpdateLesson(ctx context.Context, lessonID string, patch map[string]interface{}) error {
	if len(patch) == 0 {
		return invalidRequest("update body has no fields")
	}

	fields := make(map[string]interface{}, len(patch)+1)
	for key, raw := range patch {
		if _, ok := editableLessonFields[key]; !ok {
			return invalidRequest("field %q cannot be updated", key)
		}
		value, ok := raw.(string)
		if !ok {
			return invalidRequest("field %q must be a string", key)
		}
		if key == "content" && strings.TrimSpace(value) == "" {
			return invalidRequest("content cannot be empty")
		}
		if err := checkLessonValue(key, value); err != nil {
			return err
		}
		fields[key] = value
	}
	fields["updatedAt"] = s.now()

	if err := s.lessonRepo.Update(ctx, lessonID, fields); err != nil {
		return s.lessonError("update lesson", lessonID, err)
	}
	return nil
}

func (s *lessonService) DeleteLesson(ctx context.Context, lessonID string) error {
	if err := s.lessonRepo.Delete(ctx, lessonID); err != nil {
		return s.lessonError("delete lesson", lessonID, err)
	}
	s.logger.Info("Lesson deleted", zap.String("lessonID", lessonID))
	return nil
}

func (s *lessonService) AppendComment(ctx context.Context, lessonID string, req models.CommentRequest) error {
	if strings.TrimSpace(req.Comment) == "" {
		return invalidRequest("comment is required")
	}
	comment := models.Comment{
		Name:     req.Name,
		PhotoURL: req.PhotoURL,
		Text:     req.Comment,
		Date:     s.now(),
	}
	if err := s.lessonRepo.AppendComment(ctx, lessonID, comment); err != nil {
		return s.lessonError("append comment", lessonID, err)
	}
	return nil
}

func (s *lessonService) ToggleLike(ctx context.Context, lessonID, email string) (models.ToggleResult, error) {
	return s.toggle(ctx, lessonID, models.EngagementLike, email)
}

func (s *lessonService) ToggleFavorite(ctx context.Context, lessonID, email string) (models.ToggleResult, error) {
	return s.toggle(ctx, lessonID, models.EngagementFavorite, email)
}

func (s *lessonService) toggle(ctx context.Context, lessonID string, kind models.EngagementKind, email string) (models.ToggleResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return models.ToggleResult{}, invalidRequest("email is required")
	}
	result, err := s.lessonRepo.ToggleMember(ctx, lessonID, kind, email)
	if err != nil {
		return models.ToggleResult{}, s.lessonError("toggle "+string(kind), lessonID, err)
	}
	return result, nil
}

func (s *lessonService) lessonError(op, lessonID string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrLessonNotFound, lessonID)
	}
	s.logger.Error("Lesson store operation failed", zap.String("op", op), zap.String("lessonID", lessonID), zap.Error(err))
	return storeError(op, err)
}

func checkLessonValue(field, value string) error {
	allowed := editableLessonFields[field]
	if allowed == nil {
		return nil
	}
	for _, v := range allowed {
		if v == value {
			return nil
		}
	}
	return invalidRequest("%s must be one of %s", field, strings.Join(allowed, ", "))
}
