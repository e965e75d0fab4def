package core

import (
	"context"

	"lifenotes-backend-go/internal/models"
)

// LessonService defines the interface for lesson-related operations.
type LessonService interface {
	// ListLessons returns lessons newest first. An empty authorEmail lists all lessons.
	ListLessons(ctx context.Context, authorEmail string) ([]*models.Lesson, error)
	ListFavorites(ctx context.Context, email string) ([]*models.Lesson, error)
	GetLesson(ctx context.Context, lessonID string) (*models.Lesson, error)
	CreateLesson(ctx context.Context, req models.CreateLessonRequest) (*models.Lesson, error)
	// UpdateLesson applies a patch of editable fields. Any other key is rejected.
	UpdateLesson(ctx context.Context, lessonID string, patch map[string]interface{}) error
	DeleteLesson(ctx context.Context, lessonID string) error
	AppendComment(ctx context.Context, lessonID string, req models.CommentRequest) error
	ToggleLike(ctx context.Context, lessonID, email string) (models.ToggleResult, error)
	ToggleFavorite(ctx context.Context, lessonID, email string) (models.ToggleResult, error)
}

// UserService defines the interface for user profile operations.
type UserService interface {
	// UpsertUser creates the profile or refreshes name/photoURL, returning true when created.
	UpsertUser(ctx context.Context, req models.UpsertUserRequest) (bool, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetRole returns "" for unknown users and users without a role.
	GetRole(ctx context.Context, email string) (string, error)
	UpdateUser(ctx context.Context, email string, patch map[string]interface{}) error
	// SetPremium reports whether the flag changed; an already premium user is not an error.
	SetPremium(ctx context.Context, email, sessionID string) (bool, error)
}

// ReportService defines the interface for lesson reports.
type ReportService interface {
	CreateReport(ctx context.Context, req models.CreateReportRequest) (*models.Report, error)
	ListReports(ctx context.Context) ([]*models.Report, error)
}

// CheckoutService defines the premium checkout flow.
type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, email string) (string, error) // Returns redirect URL
	ConfirmPayment(ctx context.Context, sessionID string) (*models.PaymentConfirmation, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// RoleCache is an optional read-through cache for GetRole.
type RoleCache interface {
	Get(ctx context.Context, email string) (role string, found bool, err error)
	Set(ctx context.Context, email, role string) error
	Delete(ctx context.Context, email string) error
}
