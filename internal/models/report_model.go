package models

import "time"

// Report flags a lesson for moderator review. Reports are append-only.
type Report struct {
	ID            string    `json:"_id" firestore:"-" bson:"-"`
	LessonID      string    `json:"lessonId" firestore:"lessonId" bson:"lessonId"`
	ReporterEmail string    `json:"reporterEmail,omitempty" firestore:"reporterEmail,omitempty" bson:"reporterEmail,omitempty"`
	Reason        string    `json:"reason" firestore:"reason" bson:"reason"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
}
