package models

import "time"

// PaymentRecord is a ledger entry for a checkout session that has already
// elevated a user to premium. SessionID is unique across the ledger.
type PaymentRecord struct {
	SessionID   string    `json:"sessionId" firestore:"sessionId" bson:"sessionId"`
	Email       string    `json:"email" firestore:"email" bson:"email"`
	AmountTotal int64     `json:"amountTotal,omitempty" firestore:"amountTotal,omitempty" bson:"amountTotal,omitempty"`
	Currency    string    `json:"currency,omitempty" firestore:"currency,omitempty" bson:"currency,omitempty"`
	Source      string    `json:"source" firestore:"source" bson:"source"` // "confirmation" or "webhook"
	AppliedAt   time.Time `json:"appliedAt" firestore:"appliedAt" bson:"appliedAt"`
}

// PaymentConfirmation is the outcome of a successful payment confirmation.
type PaymentConfirmation struct {
	Applied        bool
	AlreadyApplied bool
	Email          string
}
