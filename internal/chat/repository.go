package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"parley/internal/bus"
)

// Repository owns every conversation and the foreground pointer, and decides
// when the notification sink must fire. The contact set is fixed at
// construction; conversations are never added or removed. Explicitly
// constructed and passed by reference — there is no package-level instance.
type Repository struct {
	dir    Directory
	sched  *Scheduler
	sink   NotificationSink
	bus    *bus.Bus
	logger *zap.Logger

	contacts  []Contact
	contactBy map[int64]Contact
	convs     map[int64]*Conversation

	fg foregroundRef
}

// NewRepository loads the contact directory snapshot and creates one
// conversation per contact.
func NewRepository(dir Directory, sched *Scheduler, sink NotificationSink, b *bus.Bus, logger *zap.Logger) *Repository {
	r := &Repository{
		dir:       dir,
		sched:     sched,
		sink:      sink,
		bus:       b,
		logger:    logger,
		contactBy: make(map[int64]Contact),
		convs:     make(map[int64]*Conversation),
	}
	r.contacts = dir.Contacts()
	for _, ct := range r.contacts {
		r.contactBy[ct.ID] = ct
		r.convs[ct.ID] = newConversation(ct.ID, r.fg.current)
	}
	return r
}

// Contacts returns the ordered directory snapshot.
func (r *Repository) Contacts() []Contact {
	out := make([]Contact, len(r.contacts))
	copy(out, r.contacts)
	return out
}

// Contact looks up a contact by id.
func (r *Repository) Contact(id int64) (Contact, bool) {
	ct, ok := r.contactBy[id]
	return ct, ok
}

// Foreground returns the currently foregrounded contact id, 0 for none.
func (r *Repository) Foreground() int64 {
	return r.fg.current()
}

// Alerted reports whether a conversation has a pending alert.
func (r *Repository) Alerted(id int64) bool {
	conv, ok := r.convs[id]
	return ok && conv.Alerted()
}

// Watch subscribes to a conversation's message sequence. The callback
// receives the current snapshot immediately and the full updated sequence on
// every append. Close the returned subscription on every exit path.
func (r *Repository) Watch(id int64, fn func([]Message)) (*Subscription, error) {
	conv, ok := r.convs[id]
	if !ok {
		return nil, fmt.Errorf("contact %d: %w", id, ErrNotFound)
	}
	return conv.Subscribe(fn), nil
}

// Snapshot returns a point-in-time copy of a conversation's messages.
func (r *Repository) Snapshot(id int64) ([]Message, error) {
	conv, ok := r.convs[id]
	if !ok {
		return nil, fmt.Errorf("contact %d: %w", id, ErrNotFound)
	}
	return conv.Snapshot(), nil
}

// Send appends the local user's message synchronously, then hands the
// simulated reply to the scheduler. On reply completion, a fresh alert is
// shown unless the conversation is foregrounded at that moment.
func (r *Repository) Send(id int64, text, photoRef, photoMime string) error {
	conv, ok := r.convs[id]
	if !ok {
		return fmt.Errorf("contact %d: %w", id, ErrNotFound)
	}
	msg, err := NewMessage(LocalUserID, text, photoRef, photoMime)
	if err != nil {
		return err
	}

	conv.Append(msg)
	r.bus.Publish(bus.KindConversationUpdated, id)

	r.sched.Schedule(conv, text, func() {
		r.replyDelivered(id)
	})
	return nil
}

// replyDelivered runs on a worker once the simulated reply is appended.
func (r *Repository) replyDelivered(id int64) {
	r.bus.Publish(bus.KindConversationUpdated, id)
	if r.fg.current() == id {
		// The user is already looking at it.
		return
	}
	if err := r.sink.ShowAlert(id, false, false); err != nil {
		r.logger.Warn("notification sink unavailable",
			zap.Error(err), zap.Int64("contact", id))
	}
	r.bus.Publish(bus.KindAlertRaised, id)
}

// RefreshNotification re-renders an existing alert to reflect latest state.
// It never changes the conversation's alert status.
func (r *Repository) RefreshNotification(id int64) error {
	conv, ok := r.convs[id]
	if !ok {
		return fmt.Errorf("contact %d: %w", id, ErrNotFound)
	}
	if !conv.Alerted() {
		return nil
	}
	if err := r.sink.ShowAlert(id, false, true); err != nil {
		r.logger.Warn("notification sink unavailable",
			zap.Error(err), zap.Int64("contact", id))
	}
	return nil
}

// SetForeground marks the conversation as the one the user is looking at and
// asks the sink to dismiss or silence its alert, keyed on whether the
// conversation was modified.
func (r *Repository) SetForeground(id int64) error {
	conv, ok := r.convs[id]
	if !ok {
		return fmt.Errorf("contact %d: %w", id, ErrNotFound)
	}

	r.fg.set(id)
	wasAlerted := conv.clearAlert()

	if err := r.sink.UpdateAlert(id, wasAlerted); err != nil {
		r.logger.Warn("notification sink unavailable",
			zap.Error(err), zap.Int64("contact", id))
	}
	r.bus.Publish(bus.KindForegroundChanged, id)
	if wasAlerted {
		r.bus.Publish(bus.KindAlertCleared, id)
	}
	return nil
}

// ClearForeground clears the foreground pointer only if it currently equals
// id, guarding against stale clears from a conversation that already lost
// foreground to another.
func (r *Repository) ClearForeground(id int64) {
	if r.fg.clear(id) {
		r.bus.Publish(bus.KindForegroundChanged, 0)
	}
}

// RequestBubble asynchronously presents the conversation as a floating
// bubble, regardless of foreground state.
func (r *Repository) RequestBubble(id int64) error {
	if _, ok := r.convs[id]; !ok {
		return fmt.Errorf("contact %d: %w", id, ErrNotFound)
	}
	r.sched.Submit(func(_ context.Context) {
		if err := r.sink.ShowAlert(id, true, false); err != nil {
			r.logger.Warn("notification sink unavailable",
				zap.Error(err), zap.Int64("contact", id))
		}
	})
	return nil
}

// CanBubble combines the contact's capability flag with the sink's policy.
// A contact without the flag can never bubble, whatever the sink says.
func (r *Repository) CanBubble(id int64) bool {
	ct, ok := r.contactBy[id]
	if !ok || !ct.BubbleCapable {
		return false
	}
	return r.sink.CanBubble(id)
}

// Close stops accepting scheduling requests and lets in-flight replies
// complete or be abandoned. Completed appends remain consistent.
func (r *Repository) Close() {
	r.sched.Stop()
}
