package models

import "time"

// PremiumActivatedEvent is published when a checkout session first elevates a user.
type PremiumActivatedEvent struct {
	Email       string    `json:"email"`
	SessionID   string    `json:"sessionId"`
	AmountTotal int64     `json:"amountTotal,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	Source      string    `json:"source"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// LessonReportedEvent is published for every stored report, for moderation consumers.
type LessonReportedEvent struct {
	ReportID      string    `json:"reportId"`
	LessonID      string    `json:"lessonId"`
	ReporterEmail string    `json:"reporterEmail,omitempty"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurredAt"`
}
