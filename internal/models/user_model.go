package models

import "time"

// User represents a LifeNotes user profile. Email is the lookup key.
type User struct {
	ID               string     `json:"_id,omitempty" firestore:"-" bson:"-"`
	Email            string     `json:"email" firestore:"email" bson:"email"`
	Name             string     `json:"name,omitempty" firestore:"name,omitempty" bson:"name,omitempty"`
	PhotoURL         string     `json:"photoURL,omitempty" firestore:"photoURL,omitempty" bson:"photoURL,omitempty"`
	Role             string     `json:"role,omitempty" firestore:"role" bson:"role"` // "" or "admin"
	IsPremium        bool       `json:"isPremium" firestore:"isPremium" bson:"isPremium"`
	PremiumSince     *time.Time `json:"premiumSince,omitempty" firestore:"premiumSince,omitempty" bson:"premiumSince,omitempty"`
	PaymentSessionID string     `json:"paymentSessionId,omitempty" firestore:"paymentSessionId,omitempty" bson:"paymentSessionId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

const RoleAdmin = "admin"
