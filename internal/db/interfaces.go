package db

import (
	"context"
	"errors"
	"time"

	"lifenotes-backend-go/internal/models"
)

// ErrNotFound is returned when an id- or email-keyed operation matches no document.
// Malformed ids are reported the same way.
var ErrNotFound = errors.New("document not found")

// Collection names. Lessons live in "addLesson" to match existing data.
const (
	lessonsCollection  = "addLesson"
	usersCollection    = "users"
	reportsCollection  = "reports"
	paymentsCollection = "payments"
)

// LessonFilter narrows a lesson listing. Empty fields do not filter.
type LessonFilter struct {
	AuthorEmail string
	FavoritedBy string
}

// LessonRepository defines the storage operations for lessons.
type LessonRepository interface {
	// List returns matching lessons, newest first.
	List(ctx context.Context, filter LessonFilter) ([]*models.Lesson, error)
	GetByID(ctx context.Context, lessonID string) (*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) (string, error) // Returns new lesson ID
	// Update overwrites the given top-level fields. Keys are stored field names.
	Update(ctx context.Context, lessonID string, fields map[string]interface{}) error
	Delete(ctx context.Context, lessonID string) error
	AppendComment(ctx context.Context, lessonID string, comment models.Comment) error
	// ToggleMember adds email to the set if absent, otherwise removes it, and
	// stores the resulting set size in the matching count field. The whole
	// step is one atomic store operation.
	ToggleMember(ctx context.Context, lessonID string, kind models.EngagementKind, email string) (models.ToggleResult, error)
}

// UserRepository defines the storage operations for user profiles, keyed by email.
type UserRepository interface {
	List(ctx context.Context) ([]*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Upsert creates the user if no document has this email, otherwise it
	// overwrites non-empty profile fields (name, photoURL) and updatedAt.
	// Role, isPremium and createdAt of an existing user are never touched.
	Upsert(ctx context.Context, user *models.User) (bool, error) // Returns true when created
	Update(ctx context.Context, email string, fields map[string]interface{}) error
	// SetPremium flips isPremium to true and records the audit fields.
	// It returns false without writing when the user is already premium.
	SetPremium(ctx context.Context, email, sessionID string, at time.Time) (bool, error)
}

// ReportRepository defines the storage operations for lesson reports.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) (string, error)
	List(ctx context.Context) ([]*models.Report, error) // Newest first
}

// PaymentRepository is the ledger of checkout sessions already applied to a user.
type PaymentRepository interface {
	// Record inserts the entry unless one exists for the same session ID.
	// It returns true only for the first insert.
	Record(ctx context.Context, record *models.PaymentRecord) (bool, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.PaymentRecord, error)
}

// Store groups the repositories of one backend with the client that owns them.
type Store struct {
	Lessons  LessonRepository
	Users    UserRepository
	Reports  ReportRepository
	Payments PaymentRepository

	closeFn func(ctx context.Context) error
}

// Close releases the backend client.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.closeFn == nil {
		return nil
	}
	return s.closeFn(ctx)
}
