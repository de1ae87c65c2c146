package chat

import "errors"

var (
	// ErrNotFound is returned for operations on an unknown contact id.
	ErrNotFound = errors.New("conversation not found")

	// ErrInvalidMessage is returned when a message carries neither text nor
	// photo, both at once, or a photo without its mime type.
	ErrInvalidMessage = errors.New("invalid message content")
)
