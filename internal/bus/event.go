package bus

import "time"

// Event kinds published by the conversation repository.
const (
	KindConversationUpdated = "conversation.updated"
	KindAlertRaised         = "alert.raised"
	KindAlertCleared        = "alert.cleared"
	KindForegroundChanged   = "foreground.changed"
)

// Event is a coarse domain signal. It carries only the contact identity;
// observers that need message contents use a conversation subscription,
// which is lossless.
type Event struct {
	Kind      string
	Timestamp time.Time
	ContactID int64
}
