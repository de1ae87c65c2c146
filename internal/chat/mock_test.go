package chat

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// mockDirectory serves a fixed contact set and template replies.
type mockDirectory struct {
	contacts []Contact
	err      error
	panics   bool
}

func (d *mockDirectory) Contacts() []Contact {
	return d.contacts
}

func (d *mockDirectory) Reply(contactID int64, incoming string) (string, error) {
	if d.panics {
		panic("reply blew up")
	}
	if d.err != nil {
		return "", d.err
	}
	for _, ct := range d.contacts {
		if ct.ID == contactID {
			return fmt.Sprintf("%s says: %s", ct.Name, incoming), nil
		}
	}
	return "", fmt.Errorf("contact %d: %w", contactID, ErrNotFound)
}

// mockSink records sink calls and returns a configurable error.
type mockSink struct {
	mu         sync.Mutex
	shows      []showCall
	updates    []updateCall
	bubbleable bool
	err        error
}

type showCall struct {
	ContactID int64
	AsBubble  bool
	IsUpdate  bool
}

type updateCall struct {
	ContactID int64
	Silence   bool
}

func (s *mockSink) ShowAlert(contactID int64, asBubble, isUpdate bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shows = append(s.shows, showCall{ContactID: contactID, AsBubble: asBubble, IsUpdate: isUpdate})
	return s.err
}

func (s *mockSink) UpdateAlert(contactID int64, silence bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, updateCall{ContactID: contactID, Silence: silence})
	return s.err
}

func (s *mockSink) CanBubble(int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bubbleable
}

func (s *mockSink) showCalls() []showCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]showCall, len(s.shows))
	copy(out, s.shows)
	return out
}

func (s *mockSink) updateCalls() []updateCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]updateCall, len(s.updates))
	copy(out, s.updates)
	return out
}

func testContacts() []Contact {
	return []Contact{
		{ID: 42, Name: "Cat", Avatar: "cat", BubbleCapable: true},
		{ID: 43, Name: "Dog", Avatar: "dog", BubbleCapable: true},
		{ID: 44, Name: "Sheep", Avatar: "sheep", BubbleCapable: false},
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout: %s", msg)
}

func textOf(msgs []Message) string {
	parts := make([]string, len(msgs))
	for i, m := range msgs {
		parts[i] = fmt.Sprintf("%d:%s", m.SenderID, m.Text)
	}
	return strings.Join(parts, "|")
}
