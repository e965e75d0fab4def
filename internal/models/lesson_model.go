package models

import "time"

// Lesson represents a life lesson shared by an author.
type Lesson struct {
	ID             string    `json:"_id" firestore:"-" bson:"-"` // Document ID
	Title          string    `json:"title,omitempty" firestore:"title,omitempty" bson:"title,omitempty"`
	Content        string    `json:"content" firestore:"content" bson:"content"`
	Category       string    `json:"category,omitempty" firestore:"category,omitempty" bson:"category,omitempty"`
	EmotionalTone  string    `json:"emotionalTone,omitempty" firestore:"emotionalTone,omitempty" bson:"emotionalTone,omitempty"`
	ImageURL       string    `json:"imageURL,omitempty" firestore:"imageURL,omitempty" bson:"imageURL,omitempty"`
	Visibility     string    `json:"visibility" firestore:"visibility" bson:"visibility"`    // "public" or "private"
	AccessLevel    string    `json:"accessLevel" firestore:"accessLevel" bson:"accessLevel"` // "free" or "premium"
	Author         Author    `json:"author" firestore:"author" bson:"author"`
	Likes          []string  `json:"likes" firestore:"likes" bson:"likes"`
	LikesCount     int       `json:"likesCount" firestore:"likesCount" bson:"likesCount"`
	Favorites      []string  `json:"favorites" firestore:"favorites" bson:"favorites"`
	FavoritesCount int       `json:"favoritesCount" firestore:"favoritesCount" bson:"favoritesCount"`
	Comments       []Comment `json:"comments" firestore:"comments" bson:"comments"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

// Author identifies who wrote a lesson.
type Author struct {
	Name     string `json:"name,omitempty" firestore:"name,omitempty" bson:"name,omitempty"`
	Email    string `json:"email" firestore:"email" bson:"email"`
	PhotoURL string `json:"photoURL,omitempty" firestore:"photoURL,omitempty" bson:"photoURL,omitempty"`
}

// Comment is one entry of a lesson's append-only comment thread.
type Comment struct {
	Name     string    `json:"name,omitempty" firestore:"name,omitempty" bson:"name,omitempty"`
	PhotoURL string    `json:"photoURL,omitempty" firestore:"photoURL,omitempty" bson:"photoURL,omitempty"`
	Text     string    `json:"comment" firestore:"comment" bson:"comment"`
	Date     time.Time `json:"date" firestore:"date" bson:"date"`
}

// EngagementKind names one of the per-lesson membership sets.
type EngagementKind string

const (
	EngagementLike     EngagementKind = "likes"
	EngagementFavorite EngagementKind = "favorites"
)

// SetField is the stored field holding the member emails.
func (k EngagementKind) SetField() string { return string(k) }

// CountField is the denormalized counter kept equal to the set size.
func (k EngagementKind) CountField() string { return string(k) + "Count" }

// Members returns the membership set of the given kind.
func (l *Lesson) Members(kind EngagementKind) []string {
	if kind == EngagementFavorite {
		return l.Favorites
	}
	return l.Likes
}

// SetMembers replaces the set of the given kind and resyncs its counter.
func (l *Lesson) SetMembers(kind EngagementKind, members []string) {
	if kind == EngagementFavorite {
		l.Favorites = members
		l.FavoritesCount = len(members)
		return
	}
	l.Likes = members
	l.LikesCount = len(members)
}

// Normalize replaces nil collections with empty ones so they encode as [] rather than null.
func (l *Lesson) Normalize() {
	if l.Likes == nil {
		l.Likes = []string{}
	}
	if l.Favorites == nil {
		l.Favorites = []string{}
	}
	if l.Comments == nil {
		l.Comments = []Comment{}
	}
}

// ToggleResult reports the membership state after a like/favorite toggle.
type ToggleResult struct {
	Member bool
	Count  int
}
