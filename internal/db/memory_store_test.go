package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"lifenotes-backend-go/internal/models"
)

func newLesson(author string, createdAt time.Time) *models.Lesson {
	return &models.Lesson{
		Content:   "content by " + author,
		Author:    models.Author{Email: author},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestToggleMembership(t *testing.T) {
	members := []string{"a@x.com", "b@x.com"}

	next, isMember := toggleMembership(members, "c@x.com")
	if !isMember || len(next) != 3 || next[2] != "c@x.com" {
		t.Fatalf("add: got %v member=%v", next, isMember)
	}

	next, isMember = toggleMembership(members, "a@x.com")
	if isMember || len(next) != 1 || next[0] != "b@x.com" {
		t.Fatalf("remove: got %v member=%v", next, isMember)
	}
	if len(members) != 2 {
		t.Fatalf("input slice was modified: %v", members)
	}
}

func TestMemoryLessonToggleTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Lessons.Create(ctx, newLesson("a@x.com", time.Now()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	res, err := store.Lessons.ToggleMember(ctx, id, models.EngagementLike, "b@y.com")
	if err != nil {
		t.Fatalf("ToggleMember: %v", err)
	}
	if !res.Member || res.Count != 1 {
		t.Fatalf("first toggle = %+v, want member with count 1", res)
	}

	res, err = store.Lessons.ToggleMember(ctx, id, models.EngagementLike, "b@y.com")
	if err != nil {
		t.Fatalf("ToggleMember: %v", err)
	}
	if res.Member || res.Count != 0 {
		t.Fatalf("second toggle = %+v, want non-member with count 0", res)
	}

	lesson, err := store.Lessons.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(lesson.Likes) != 0 || lesson.LikesCount != 0 {
		t.Errorf("likes = %v count %d, want empty", lesson.Likes, lesson.LikesCount)
	}
	if len(lesson.Favorites) != 0 || lesson.FavoritesCount != 0 {
		t.Errorf("favorites changed by like toggle: %v", lesson.Favorites)
	}
}

func TestMemoryLessonConcurrentTogglesKeepCountInSync(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id, err := store.Lessons.Create(ctx, newLesson("a@x.com", time.Now()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := fmt.Sprintf("user%d@x.com", i%10)
			if _, err := store.Lessons.ToggleMember(ctx, id, models.EngagementFavorite, email); err != nil {
				t.Errorf("ToggleMember: %v", err)
			}
		}(i)
	}
	wg.Wait()

	lesson, err := store.Lessons.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if lesson.FavoritesCount != len(lesson.Favorites) {
		t.Fatalf("favoritesCount %d != len(favorites) %d", lesson.FavoritesCount, len(lesson.Favorites))
	}
	// Each email was toggled five times, so every one of them ends up a member.
	if len(lesson.Favorites) != 10 {
		t.Errorf("len(favorites) = %d, want 10", len(lesson.Favorites))
	}
}

func TestMemoryLessonListOrderAndFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	oldID, _ := store.Lessons.Create(ctx, newLesson("a@x.com", base))
	newID, _ := store.Lessons.Create(ctx, newLesson("a@x.com", base.Add(time.Hour)))
	otherID, _ := store.Lessons.Create(ctx, newLesson("b@x.com", base.Add(30*time.Minute)))

	all, err := store.Lessons.List(ctx, LessonFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{newID, otherID, oldID}
	if len(all) != len(want) {
		t.Fatalf("List returned %d lessons, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("List[%d] = %s, want %s", i, all[i].ID, id)
		}
	}

	mine, _ := store.Lessons.List(ctx, LessonFilter{AuthorEmail: "a@x.com"})
	if len(mine) != 2 || mine[0].ID != newID {
		t.Errorf("author filter returned %d lessons", len(mine))
	}

	if _, err := store.Lessons.ToggleMember(ctx, otherID, models.EngagementFavorite, "c@x.com"); err != nil {
		t.Fatalf("ToggleMember: %v", err)
	}
	favs, _ := store.Lessons.List(ctx, LessonFilter{FavoritedBy: "c@x.com"})
	if len(favs) != 1 || favs[0].ID != otherID {
		t.Errorf("favorites filter = %v", favs)
	}
}

func TestMemoryLessonAppendCommentKeepsDuplicates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	id, err := store.Lessons.Create(ctx, newLesson("a@x.com", time.Now()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	comment := models.Comment{Name: "Bo", Text: "same", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	for i := 0; i < 2; i++ {
		if err := store.Lessons.AppendComment(ctx, id, comment); err != nil {
			t.Fatalf("AppendComment #%d: %v", i, err)
		}
	}

	lesson, err := store.Lessons.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(lesson.Comments) != 2 {
		t.Errorf("comments = %d, want 2 identical entries", len(lesson.Comments))
	}
}

func TestMemoryLessonReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id, _ := store.Lessons.Create(ctx, newLesson("a@x.com", time.Now()))

	lesson, _ := store.Lessons.GetByID(ctx, id)
	lesson.Likes = append(lesson.Likes, "intruder@x.com")
	lesson.LikesCount = 42

	again, _ := store.Lessons.GetByID(ctx, id)
	if len(again.Likes) != 0 || again.LikesCount != 0 {
		t.Fatalf("stored lesson was mutated through a returned pointer: %+v", again)
	}
}

func TestMemoryLessonNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Lessons.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID error = %v, want ErrNotFound", err)
	}
	if err := store.Lessons.Update(ctx, "missing", map[string]interface{}{"title": "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update error = %v, want ErrNotFound", err)
	}
	if err := store.Lessons.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete error = %v, want ErrNotFound", err)
	}
	if err := store.Lessons.AppendComment(ctx, "missing", models.Comment{Text: "hi"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("AppendComment error = %v, want ErrNotFound", err)
	}
	if _, err := store.Lessons.ToggleMember(ctx, "missing", models.EngagementLike, "a@x.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ToggleMember error = %v, want ErrNotFound", err)
	}
}

func TestMemoryLessonUpdateRejectsUnknownField(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id, _ := store.Lessons.Create(ctx, newLesson("a@x.com", time.Now()))

	err := store.Lessons.Update(ctx, id, map[string]interface{}{"likesCount": 5})
	if err == nil {
		t.Fatal("Update with unknown field succeeded")
	}
	if err := store.Lessons.Update(ctx, id, map[string]interface{}{"title": "New"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	lesson, _ := store.Lessons.GetByID(ctx, id)
	if lesson.Title != "New" {
		t.Errorf("title = %q, want New", lesson.Title)
	}
}

func TestMemoryUserUpsertPreservesServerFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	created, err := store.Users.Upsert(ctx, &models.User{Email: "a@x.com", Name: "First", CreatedAt: now, UpdatedAt: now})
	if err != nil || !created {
		t.Fatalf("first Upsert = %v, %v; want created", created, err)
	}
	if err := store.Users.Update(ctx, "a@x.com", map[string]interface{}{"role": models.RoleAdmin}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if changed, err := store.Users.SetPremium(ctx, "a@x.com", "cs_1", now); err != nil || !changed {
		t.Fatalf("SetPremium = %v, %v; want changed", changed, err)
	}

	created, err = store.Users.Upsert(ctx, &models.User{Email: "a@x.com", Name: "Second", UpdatedAt: now.Add(time.Minute)})
	if err != nil || created {
		t.Fatalf("second Upsert = %v, %v; want existing", created, err)
	}

	users, _ := store.Users.List(ctx)
	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}
	u := users[0]
	if u.Name != "Second" || u.Role != models.RoleAdmin || !u.IsPremium {
		t.Errorf("user after upsert = %+v", u)
	}
}

func TestMemoryUserSetPremiumIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, _ = store.Users.Upsert(ctx, &models.User{Email: "a@x.com"})

	first := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if changed, _ := store.Users.SetPremium(ctx, "a@x.com", "cs_1", first); !changed {
		t.Fatal("first SetPremium did not change the user")
	}
	if changed, _ := store.Users.SetPremium(ctx, "a@x.com", "cs_2", first.Add(time.Hour)); changed {
		t.Fatal("second SetPremium changed the user")
	}
	u, _ := store.Users.GetByEmail(ctx, "a@x.com")
	if u.PaymentSessionID != "cs_1" || u.PremiumSince == nil || !u.PremiumSince.Equal(first) {
		t.Errorf("audit fields overwritten: %+v", u)
	}

	if _, err := store.Users.SetPremium(ctx, "nobody@x.com", "cs_3", first); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetPremium on unknown user error = %v, want ErrNotFound", err)
	}
}

func TestMemoryPaymentRecordOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rec := &models.PaymentRecord{SessionID: "cs_1", Email: "a@x.com", Source: "confirmation"}

	if ok, err := store.Payments.Record(ctx, rec); err != nil || !ok {
		t.Fatalf("first Record = %v, %v", ok, err)
	}
	if ok, err := store.Payments.Record(ctx, rec); err != nil || ok {
		t.Fatalf("second Record = %v, %v; want duplicate", ok, err)
	}
	got, err := store.Payments.GetBySessionID(ctx, "cs_1")
	if err != nil || got.Email != "a@x.com" {
		t.Fatalf("GetBySessionID = %+v, %v", got, err)
	}
}

func TestMemoryReportsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Now()

	_, _ = store.Reports.Create(ctx, &models.Report{LessonID: "l1", Reason: "old", CreatedAt: base})
	_, _ = store.Reports.Create(ctx, &models.Report{LessonID: "l2", Reason: "new", CreatedAt: base.Add(time.Second)})

	reports, err := store.Reports.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(reports) != 2 || reports[0].Reason != "new" {
		t.Errorf("reports = %+v", reports)
	}
}
