package domain

import "time"

// MessageKind distinguishes user-authored messages from system notifications.
type MessageKind string

const (
	MessageKindUser   MessageKind = "USER"
	MessageKindSystem MessageKind = "SYSTEM"
)

// Message is a ride-scoped message between two users. System notifications
// emitted by the booking ledger are stored as SYSTEM messages; their
// creation is best-effort and never affects the triggering operation.
type Message struct {
	ID         string
	RideID     string
	SenderID   string
	ReceiverID string
	Kind       MessageKind
	Content    string
	CreatedAt  time.Time
}
