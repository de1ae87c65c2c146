package chat

import (
	"fmt"

	"github.com/google/uuid"
)

// LocalUserID is the reserved sender id for the local user. Contacts always
// have a nonzero id.
const LocalUserID int64 = 0

// Contact is the immutable identity of a correspondent. Loaded once at
// startup from the contact directory; never mutated.
type Contact struct {
	ID            int64
	Name          string
	Avatar        string
	BubbleCapable bool
}

// Message is an immutable chat entry. Exactly one of text or photo is set;
// a photo always carries its mime type. Timestamp is assigned at append time
// and is strictly monotonic within a conversation.
type Message struct {
	ID        string
	SenderID  int64
	Text      string
	PhotoRef  string
	PhotoMime string
	Timestamp int64 // unix millis
}

// NewMessage builds an unstamped message, validating the content invariant.
func NewMessage(senderID int64, text, photoRef, photoMime string) (Message, error) {
	hasText := text != ""
	hasPhoto := photoRef != ""
	switch {
	case hasText == hasPhoto:
		return Message{}, fmt.Errorf("exactly one of text or photo required: %w", ErrInvalidMessage)
	case hasPhoto && photoMime == "":
		return Message{}, fmt.Errorf("photo without mime type: %w", ErrInvalidMessage)
	case !hasPhoto && photoMime != "":
		return Message{}, fmt.Errorf("mime type without photo: %w", ErrInvalidMessage)
	}
	return Message{
		ID:        uuid.New().String(),
		SenderID:  senderID,
		Text:      text,
		PhotoRef:  photoRef,
		PhotoMime: photoMime,
	}, nil
}

// FromMe reports whether the message was sent by the local user.
func (m Message) FromMe() bool {
	return m.SenderID == LocalUserID
}

// Directory supplies static contact identity and reply generation. Loaded
// once; treated as read-only.
type Directory interface {
	// Contacts returns the full directory snapshot in stable order.
	Contacts() []Contact
	// Reply synthesizes the contact's reply to an incoming text. Pure
	// function of (contact, text); no hidden state.
	Reply(contactID int64, incoming string) (string, error)
}

// NotificationSink renders or updates user-visible alerts for conversations.
// The repository calls it; it never inspects notification state directly.
// Sink failures are logged and swallowed: conversation correctness does not
// depend on alerts succeeding.
type NotificationSink interface {
	ShowAlert(contactID int64, asBubble, isUpdate bool) error
	UpdateAlert(contactID int64, silence bool) error
	CanBubble(contactID int64) bool
}
