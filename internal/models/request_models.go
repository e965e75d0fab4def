package models

// CreateLessonRequest represents the request body for creating a new lesson.
type CreateLessonRequest struct {
	Title         string `json:"title,omitempty"`
	Content       string `json:"content" binding:"required"`
	Category      string `json:"category,omitempty"`
	EmotionalTone string `json:"emotionalTone,omitempty"`
	ImageURL      string `json:"imageURL,omitempty"`
	Visibility    string `json:"visibility,omitempty" binding:"omitempty,oneof=public private"`
	AccessLevel   string `json:"accessLevel,omitempty" binding:"omitempty,oneof=free premium"`
	Author        Author `json:"author"`
}

// CommentRequest represents the request body for appending a comment to a lesson.
type CommentRequest struct {
	Name     string `json:"name,omitempty"`
	PhotoURL string `json:"photoURL,omitempty"`
	Comment  string `json:"comment" binding:"required"`
}

// ToggleRequest carries the email whose like/favorite membership is flipped.
type ToggleRequest struct {
	Email string `json:"email" binding:"required"`
}

// UpsertUserRequest represents the profile saved on login/registration.
// Server-managed fields (role, isPremium, timestamps) are not accepted here.
type UpsertUserRequest struct {
	Email    string `json:"email" binding:"required" validate:"required,email,excludes=/"` // "/" cannot appear in a document ID
	Name     string `json:"name,omitempty" validate:"max=200"`
	PhotoURL string `json:"photoURL,omitempty" validate:"omitempty,url"`
}

// CreateReportRequest represents the request body for reporting a lesson.
type CreateReportRequest struct {
	LessonID      string `json:"lessonId" binding:"required"`
	ReporterEmail string `json:"reporterEmail,omitempty"`
	Reason        string `json:"reason" binding:"required"`
}

// CheckoutRequest represents the request body for starting a premium checkout.
type CheckoutRequest struct {
	SenderEmail string `json:"senderEmail"`
}
