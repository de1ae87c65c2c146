package chat

import (
	"sync"
	"time"
)

// Conversation owns the ordered, append-only message history and the
// subscriber set for one contact. Appends and subscriber bookkeeping happen
// inside a per-conversation critical section; callbacks are always invoked
// outside it with a captured snapshot, so a subscriber may re-enter the
// repository without deadlocking.
type Conversation struct {
	contactID  int64
	foreground func() int64

	mu       sync.Mutex
	messages []Message
	lastTS   int64
	state    AlertState
	subs     map[int]*subscriber
	nextSub  int
}

// subscriber wraps a callback with per-subscriber delivery ordering. A
// snapshot shorter than one already delivered is a stale prefix and is
// skipped, so observers never see the sequence go backwards.
type subscriber struct {
	mu        sync.Mutex
	fn        func([]Message)
	delivered int
}

func (s *subscriber) deliver(snapshot []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(snapshot) < s.delivered {
		return
	}
	s.delivered = len(snapshot)
	s.fn(snapshot)
}

// Subscription is the handle returned by Subscribe. Close is idempotent and
// safe to call after the conversation is gone.
type Subscription struct {
	conv *Conversation
	id   int
	once sync.Once
}

// Close deregisters the subscriber.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.conv.mu.Lock()
		delete(s.conv.subs, s.id)
		s.conv.mu.Unlock()
	})
}

func newConversation(contactID int64, foreground func() int64) *Conversation {
	return &Conversation{
		contactID:  contactID,
		foreground: foreground,
		state:      Quiet,
		subs:       make(map[int]*subscriber),
	}
}

// ContactID returns the owning contact's id.
func (c *Conversation) ContactID() int64 {
	return c.contactID
}

// Append stamps msg with a monotonic timestamp, inserts it at the end of the
// sequence and notifies all current subscribers with the updated snapshot
// before returning. The conversation is marked modified when it is not the
// foregrounded one.
func (c *Conversation) Append(msg Message) Message {
	c.mu.Lock()
	ts := time.Now().UnixMilli()
	if ts <= c.lastTS {
		ts = c.lastTS + 1
	}
	c.lastTS = ts
	msg.Timestamp = ts
	c.messages = append(c.messages, msg)

	if c.foreground() != c.contactID && c.state.canTransition(Alerted) {
		c.state = Alerted
	}

	snapshot := c.snapshotLocked()
	subs := make([]*subscriber, 0, len(c.subs))
	for _, sub := range c.subs {
		subs = append(subs, sub)
	}
	c.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(snapshot)
	}
	return msg
}

// Subscribe registers fn and immediately delivers the current snapshot.
// Zero-to-many concurrent subscribers are supported.
func (c *Conversation) Subscribe(fn func([]Message)) *Subscription {
	sub := &subscriber{fn: fn}
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = sub
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	sub.deliver(snapshot)
	return &Subscription{conv: c, id: id}
}

// Snapshot returns a point-in-time copy of the message sequence.
func (c *Conversation) Snapshot() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Alerted reports whether the conversation has a pending alert.
func (c *Conversation) Alerted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Alerted
}

// clearAlert transitions back to Quiet and reports whether the conversation
// was alerted. Only foregrounding calls this.
func (c *Conversation) clearAlert() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.canTransition(Quiet) {
		return false
	}
	c.state = Quiet
	return true
}

func (c *Conversation) snapshotLocked() []Message {
	snapshot := make([]Message, len(c.messages))
	copy(snapshot, c.messages)
	return snapshot
}
