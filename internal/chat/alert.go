package chat

import "slices"

// AlertState is the notification status of a single conversation.
type AlertState string

const (
	// Quiet means no pending alert: either nothing happened since the user
	// last looked, or the conversation is foregrounded.
	Quiet AlertState = "QUIET"
	// Alerted means the conversation changed while backgrounded.
	Alerted AlertState = "ALERTED"
)

// validTransitions defines the allowed alert transitions. Foregrounding is
// the only path back to Quiet; a notification refresh never changes state.
var validTransitions = map[AlertState][]AlertState{
	Quiet:   {Alerted},
	Alerted: {Quiet},
}

func (s AlertState) canTransition(to AlertState) bool {
	return slices.Contains(validTransitions[s], to)
}
