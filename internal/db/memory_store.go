package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"lifenotes-backend-go/internal/models"
)

// memoryState is the shared in-process data of a memory store. One mutex
// guards all of it, which makes every repository call atomic.
type memoryState struct {
	mu       sync.Mutex
	lessons  map[string]*models.Lesson
	users    map[string]*models.User
	reports  map[string]*models.Report
	payments map[string]*models.PaymentRecord
}

// NewMemoryStore returns a Store that keeps everything in process memory.
// It backs STORE_DRIVER=memory and the test suites.
func NewMemoryStore() *Store {
	state := &memoryState{
		lessons:  make(map[string]*models.Lesson),
		users:    make(map[string]*models.User),
		reports:  make(map[string]*models.Report),
		payments: make(map[string]*models.PaymentRecord),
	}
	return &Store{
		Lessons:  &memoryLessonRepository{state: state},
		Users:    &memoryUserRepository{state: state},
		Reports:  &memoryReportRepository{state: state},
		Payments: &memoryPaymentRepository{state: state},
	}
}

func copyLesson(l *models.Lesson) *models.Lesson {
	c := *l
	c.Likes = append([]string{}, l.Likes...)
	c.Favorites = append([]string{}, l.Favorites...)
	c.Comments = append([]models.Comment{}, l.Comments...)
	return &c
}

func copyUser(u *models.User) *models.User {
	c := *u
	if u.PremiumSince != nil {
		t := *u.PremiumSince
		c.PremiumSince = &t
	}
	return &c
}

type memoryLessonRepository struct {
	state *memoryState
}

func (r *memoryLessonRepository) List(_ context.Context, filter LessonFilter) ([]*models.Lesson, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	lessons := make([]*models.Lesson, 0, len(r.state.lessons))
	for _, l := range r.state.lessons {
		if filter.AuthorEmail != "" && l.Author.Email != filter.AuthorEmail {
			continue
		}
		if filter.FavoritedBy != "" && !containsString(l.Favorites, filter.FavoritedBy) {
			continue
		}
		lessons = append(lessons, copyLesson(l))
	}
	sort.SliceStable(lessons, func(i, j int) bool {
		if lessons[i].CreatedAt.Equal(lessons[j].CreatedAt) {
			return lessons[i].ID > lessons[j].ID
		}
		return lessons[i].CreatedAt.After(lessons[j].CreatedAt)
	})
	return lessons, nil
}

func (r *memoryLessonRepository) GetByID(_ context.Context, lessonID string) (*models.Lesson, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	l, ok := r.state.lessons[lessonID]
	if !ok {
		return nil, fmt.Errorf("lesson with ID '%s' not found: %w", lessonID, ErrNotFound)
	}
	return copyLesson(l), nil
}

func (r *memoryLessonRepository) Create(_ context.Context, lesson *models.Lesson) (string, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	lesson.ID = uuid.NewString()
	lesson.Normalize()
	r.state.lessons[lesson.ID] = copyLesson(lesson)
	return lesson.ID, nil
}

func (r *memoryLessonRepository) Update(_ context.Context, lessonID string, fields map[string]interface{}) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	l, ok := r.state.lessons[lessonID]
	if !ok {
		return fmt.Errorf("lesson with ID '%s' not found for update: %w", lessonID, ErrNotFound)
	}
	for key, value := range fields {
		if err := applyLessonField(l, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryLessonRepository) Delete(_ context.Context, lessonID string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, ok := r.state.lessons[lessonID]; !ok {
		return fmt.Errorf("lesson with ID '%s' not found for deletion: %w", lessonID, ErrNotFound)
	}
	delete(r.state.lessons, lessonID)
	return nil
}

func (r *memoryLessonRepository) AppendComment(_ context.Context, lessonID string, comment models.Comment) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	l, ok := r.state.lessons[lessonID]
	if !ok {
		return fmt.Errorf("lesson with ID '%s' not found for comment: %w", lessonID, ErrNotFound)
	}
	l.Comments = append(l.Comments, comment)
	return nil
}

func (r *memoryLessonRepository) ToggleMember(_ context.Context, lessonID string, kind models.EngagementKind, email string) (models.ToggleResult, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	l, ok := r.state.lessons[lessonID]
	if !ok {
		return models.ToggleResult{}, fmt.Errorf("lesson with ID '%s' not found for %s toggle: %w", lessonID, kind, ErrNotFound)
	}
	members, isMember := toggleMembership(l.Members(kind), email)
	l.SetMembers(kind, members)
	return models.ToggleResult{Member: isMember, Count: len(members)}, nil
}

// applyLessonField sets one stored field by name. Only fields the services
// update are known here.
func applyLessonField(l *models.Lesson, key string, value interface{}) error {
	switch key {
	case "updatedAt":
		t, ok := value.(time.Time)
		if !ok {
			return fmt.Errorf("field %q expects a time, got %T", key, value)
		}
		l.UpdatedAt = t
		return nil
	}

	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("field %q expects a string, got %T", key, value)
	}
	switch key {
	case "title":
		l.Title = s
	case "content":
		l.Content = s
	case "category":
		l.Category = s
	case "emotionalTone":
		l.EmotionalTone = s
	case "imageURL":
		l.ImageURL = s
	case "visibility":
		l.Visibility = s
	case "accessLevel":
		l.AccessLevel = s
	default:
		return fmt.Errorf("unknown lesson field %q", key)
	}
	return nil
}

type memoryUserRepository struct {
	state *memoryState
}

func (r *memoryUserRepository) List(_ context.Context) ([]*models.User, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	users := make([]*models.User, 0, len(r.state.users))
	for _, u := range r.state.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	u, ok := r.state.users[email]
	if !ok {
		return nil, fmt.Errorf("user '%s' not found: %w", email, ErrNotFound)
	}
	return copyUser(u), nil
}

func (r *memoryUserRepository) Upsert(_ context.Context, user *models.User) (bool, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	existing, ok := r.state.users[user.Email]
	if !ok {
		user.ID = uuid.NewString()
		r.state.users[user.Email] = copyUser(user)
		return true, nil
	}
	if user.Name != "" {
		existing.Name = user.Name
	}
	if user.PhotoURL != "" {
		existing.PhotoURL = user.PhotoURL
	}
	existing.UpdatedAt = user.UpdatedAt
	user.ID = existing.ID
	return false, nil
}

func (r *memoryUserRepository) Update(_ context.Context, email string, fields map[string]interface{}) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	u, ok := r.state.users[email]
	if !ok {
		return fmt.Errorf("user '%s' not found for update: %w", email, ErrNotFound)
	}
	for key, value := range fields {
		switch key {
		case "updatedAt":
			t, ok := value.(time.Time)
			if !ok {
				return fmt.Errorf("field %q expects a time, got %T", key, value)
			}
			u.UpdatedAt = t
		case "name", "photoURL", "role":
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("field %q expects a string, got %T", key, value)
			}
			switch key {
			case "name":
				u.Name = s
			case "photoURL":
				u.PhotoURL = s
			default:
				u.Role = s
			}
		default:
			return fmt.Errorf("unknown user field %q", key)
		}
	}
	return nil
}

func (r *memoryUserRepository) SetPremium(_ context.Context, email, sessionID string, at time.Time) (bool, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	u, ok := r.state.users[email]
	if !ok {
		return false, fmt.Errorf("user '%s' not found for premium upgrade: %w", email, ErrNotFound)
	}
	if u.IsPremium {
		return false, nil
	}
	u.IsPremium = true
	u.PremiumSince = &at
	u.PaymentSessionID = sessionID
	u.UpdatedAt = at
	return true, nil
}

type memoryReportRepository struct {
	state *memoryState
}

func (r *memoryReportRepository) Create(_ context.Context, report *models.Report) (string, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	report.ID = uuid.NewString()
	c := *report
	r.state.reports[report.ID] = &c
	return report.ID, nil
}

func (r *memoryReportRepository) List(_ context.Context) ([]*models.Report, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	reports := make([]*models.Report, 0, len(r.state.reports))
	for _, rep := range r.state.reports {
		c := *rep
		reports = append(reports, &c)
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

type memoryPaymentRepository struct {
	state *memoryState
}

func (r *memoryPaymentRepository) Record(_ context.Context, record *models.PaymentRecord) (bool, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	if _, ok := r.state.payments[record.SessionID]; ok {
		return false, nil
	}
	c := *record
	r.state.payments[record.SessionID] = &c
	return true, nil
}

func (r *memoryPaymentRepository) GetBySessionID(_ context.Context, sessionID string) (*models.PaymentRecord, error) {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	rec, ok := r.state.payments[sessionID]
	if !ok {
		return nil, fmt.Errorf("payment '%s' not found: %w", sessionID, ErrNotFound)
	}
	c := *rec
	return &c, nil
}
