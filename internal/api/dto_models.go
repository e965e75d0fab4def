package api

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// InsertAck acknowledges a created document.
type InsertAck struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateAck acknowledges an update of a single document.
type UpdateAck struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteAck acknowledges a deletion.
type DeleteAck struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// LikeResponse is returned by PATCH /addLesson/like/:id.
type LikeResponse struct {
	Acknowledged bool `json:"acknowledged"`
	Liked        bool `json:"liked"`
	LikesCount   int  `json:"likesCount"`
}

// FavoriteResponse is returned by PATCH /addLesson/favorite/:id.
type FavoriteResponse struct {
	Acknowledged   bool `json:"acknowledged"`
	Favorited      bool `json:"favorited"`
	FavoritesCount int  `json:"favoritesCount"`
}

// UpsertUserResponse is returned by POST /users.
type UpsertUserResponse struct {
	Acknowledged bool `json:"acknowledged"`
	Created      bool `json:"created"`
}

// RoleResponse is returned by GET /users/role/:email. Role is "" when unknown.
type RoleResponse struct {
	Role string `json:"role"`
}

// CheckoutSessionResponse carries the hosted checkout URL.
type CheckoutSessionResponse struct {
	URL string `json:"url"`
}

// PaymentSuccessResponse is returned by PATCH /payment-success.
type PaymentSuccessResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	AlreadyApplied bool   `json:"alreadyApplied"`
}

// WebhookAck acknowledges a provider webhook delivery.
type WebhookAck struct {
	Received bool `json:"received"`
}
