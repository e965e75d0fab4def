package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"lifenotes-backend-go/internal/db"
	"lifenotes-backend-go/internal/models"
)

func newTestLessonService() (LessonService, *db.Store) {
	store := db.NewMemoryStore()
	return NewLessonService(store.Lessons, nil), store
}

func TestCreateLessonInitializesEngagement(t *testing.T) {
	svc, _ := newTestLessonService()
	ctx := context.Background()

	before := time.Now().UTC()
	lesson, err := svc.CreateLesson(ctx, models.CreateLessonRequest{
		Content: "hi",
		Author:  models.Author{Email: " A@X.com "},
	})
	after := time.Now().UTC()
	if err != nil {
		t.Fatalf("CreateLesson: %v", err)
	}

	got, err := svc.GetLesson(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("GetLesson: %v", err)
	}
	if got.Author.Email != "a@x.com" {
		t.Errorf("author email = %q, want normalized a@x.com", got.Author.Email)
	}
	if len(got.Likes) != 0 || len(got.Favorites) != 0 || len(got.Comments) != 0 {
		t.Errorf("engagement not empty: %+v", got)
	}
	if got.Likes == nil || got.Favorites == nil || got.Comments == nil {
		t.Error("engagement collections are nil, want empty")
	}
	if got.CreatedAt.Before(before) || got.CreatedAt.After(after) {
		t.Errorf("createdAt %v outside [%v, %v]", got.CreatedAt, before, after)
	}
	if got.Visibility != VisibilityPublic || got.AccessLevel != AccessFree {
		t.Errorf("defaults = %q/%q", got.Visibility, got.AccessLevel)
	}
}

func TestCreateLessonValidation(t *testing.T) {
	svc, _ := newTestLessonService()
	ctx := context.Background()

	cases := map[string]models.CreateLessonRequest{
		"missing author":     {Content: "hi"},
		"missing content":    {Author: models.Author{Email: "a@x.com"}, Content: "  "},
		"invalid visibility": {Author: models.Author{Email: "a@x.com"}, Content: "hi", Visibility: "friends"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.CreateLesson(ctx, req); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("error = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestToggleLikeTwiceIsIdentity(t *testing.T) {
	svc, _ := newTestLessonService()
	ctx := context.Background()
	lesson, _ := svc.CreateLesson(ctx, models.CreateLessonRequest{Content: "hi", Author: models.Author{Email: "a@x.com"}})

	res, err := svc.ToggleLike(ctx, lesson.ID, "b@y.com")
	if err != nil || !res.Member || res.Count != 1 {
		t.Fatalf("first toggle = %+v, %v", res, err)
	}
	got, _ := svc.GetLesson(ctx, lesson.ID)
	if len(got.Likes) != 1 || got.Likes[0] != "b@y.com" || got.LikesCount != 1 {
		t.Fatalf("after like: likes=%v count=%d", got.Likes, got.LikesCount)
	}

	res, err = svc.ToggleLike(ctx, lesson.ID, "B@Y.com")
	if err != nil || res.Member || res.Count != 0 {
		t.Fatalf("second toggle = %+v, %v", res, err)
	}
	got, _ = svc.GetLesson(ctx, lesson.ID)
	if len(got.Likes) != 0 || got.LikesCount != 0 {
		t.Fatalf("after unlike: likes=%v count=%d", got.Likes, got.LikesCount)
	}
}

func TestToggleFavoriteIsIndependentOfLikes(t *testing.T) {
	svc, _ := newTestLessonService()
	ctx := context.Background()
	lesson, _ := svc.CreateLesson(ctx, models.CreateLessonRequest{Content: "hi", Author: models.Author{Email: "a@x.com"}})

	if _, err := svc.ToggleFavorite(ctx, lesson.ID, "b@y.com"); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	got, _ := svc.GetLesson(ctx, lesson.ID)
	if got.FavoritesCount != 1 || got.LikesCount != 0 {
		t.Errorf("counts = likes %d favorites %d", got.LikesCount, got.FavoritesCount)
	}

	favs, err := svc.ListFavorites(ctx, "b@y.com")
	if err != nil || len(favs) != 1 {
		t.Errorf("ListFavorites = %d lessons, %v", len(favs), err)
	}
	if _, err := svc.ListFavorites(ctx, ""); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("ListFavorites without email error = %v", err)
	}
}

func TestToggleRequiresEmailAndExistingLesson(t *testing.T) {
	svc, _ := newTestLessonService()
	ctx := context.Background()

	if _, err := svc.ToggleLike(ctx, "missing", ""); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("empty email error = %v", err)
	}
	if _, err := svc.ToggleLike(ctx, "missing", "b@y.com"); !errors.Is(err, ErrLessonNotFound) {
		t.Errorf("missing lesson error = %v", err)
	}
}

func TestUpdateLessonAllowlist(t *testing.T) {
	svc, _ := newTestLessonService()
	ctx := context.Background()
	lesson, _ := svc.CreateLesson(ctx, models.CreateLessonRequest{Content: "hi", Author: models.Author{Email: "a@x.com"}})

	rejected := []map[string]interface{}{
		{},
		{"likesCount": 10},
		{"_id": "other"},
		{"createdAt": "2020-01-01T00:00:00Z"},
		{"author": map[string]interface{}{"email": "evil@x.com"}},
		{"title": "ok", "likes": []interface{}{"x"}},
		{"title": 5},
		{"visibility": "everyone"},
		{"accessLevel": "gold"},
		{"content": ""},
	}
	for _, patch := range rejected {
		if err := svc.UpdateLesson(ctx, lesson.ID, patch); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("UpdateLesson(%v) error = %v, want ErrInvalidRequest", patch, err)
		}
	}

	got, _ := svc.GetLesson(ctx, lesson.ID)
	if got.Title != "" || got.LikesCount != 0 || got.Author.Email != "a@x.com" {
		t.Fatalf("rejected patch changed the lesson: %+v", got)
	}

	err := svc.UpdateLesson(ctx, lesson.ID, map[string]interface{}{
		"title":       "Patience",
		"accessLevel": AccessPremium,
	})
	if err != nil {
		t.Fatalf("UpdateLesson: %v", err)
	}
	got, _ = svc.GetLesson(ctx, lesson.ID)
	if got.Title != "Patience" || got.AccessLevel != AccessPremium {
		t.Errorf("after update: %+v", got)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Errorf("updatedAt %v before createdAt %v", got.UpdatedAt, got.CreatedAt)
	}

	if err := svc.UpdateLesson(ctx, "missing", map[string]interface{}{"title": "x"}); !errors.Is(err, ErrLessonNotFound) {
		t.Errorf("update missing lesson error = %v", err)
	}
}

func TestAppendCommentAndDelete(t *testing.T) {
	svc, _ := newTestLessonService()
	ctx := context.Background()
	lesson, _ := svc.CreateLesson(ctx, models.CreateLessonRequest{Content: "hi", Author: models.Author{Email: "a@x.com"}})

	if err := svc.AppendComment(ctx, lesson.ID, models.CommentRequest{Comment: " "}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("empty comment error = %v", err)
	}
	for _, text := range []string{"first", "second"} {
		if err := svc.AppendComment(ctx, lesson.ID, models.CommentRequest{Name: "Bo", Comment: text}); err != nil {
			t.Fatalf("AppendComment: %v", err)
		}
	}
	got, _ := svc.GetLesson(ctx, lesson.ID)
	if len(got.Comments) != 2 || got.Comments[0].Text != "first" || got.Comments[1].Text != "second" {
		t.Fatalf("comments = %+v", got.Comments)
	}
	if got.Comments[0].Date.IsZero() {
		t.Error("comment date not set")
	}

	if err := svc.DeleteLesson(ctx, lesson.ID); err != nil {
		t.Fatalf("DeleteLesson: %v", err)
	}
	if _, err := svc.GetLesson(ctx, lesson.ID); !errors.Is(err, ErrLessonNotFound) {
		t.Errorf("GetLesson after delete error = %v", err)
	}
	if err := svc.DeleteLesson(ctx, lesson.ID); !errors.Is(err, ErrLessonNotFound) {
		t.Errorf("second delete error = %v", err)
	}
}

func TestListLessonsByAuthor(t *testing.T) {
	svc, _ := newTestLessonService()
	ctx := context.Background()
	for _, email := range []string{"a@x.com", "b@x.com", "a@x.com"} {
		if _, err := svc.CreateLesson(ctx, models.CreateLessonRequest{Content: "hi", Author: models.Author{Email: email}}); err != nil {
			t.Fatalf("CreateLesson: %v", err)
		}
	}

	all, _ := svc.ListLessons(ctx, "")
	mine, _ := svc.ListLessons(ctx, "A@x.com")
	if len(all) != 3 || len(mine) != 2 {
		t.Errorf("all=%d mine=%d, want 3 and 2", len(all), len(mine))
	}
}
