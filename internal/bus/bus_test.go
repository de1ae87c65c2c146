package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("conversation.", 10)
	defer unsub()

	b.Publish(KindConversationUpdated, 42)

	select {
	case evt := <-ch:
		if evt.Kind != KindConversationUpdated {
			t.Errorf("got kind %q, want conversation.updated", evt.Kind)
		}
		if evt.ContactID != 42 {
			t.Errorf("got contact %d, want 42", evt.ContactID)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("alert.", 10)
	defer unsub()

	b.Publish(KindConversationUpdated, 1)
	b.Publish(KindAlertRaised, 1)

	select {
	case evt := <-ch:
		if evt.Kind != KindAlertRaised {
			t.Errorf("got kind %q, want alert.raised", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	// Ensure the conversation event was not delivered.
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected: no more events.
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("alert.", 10)
	unsub()

	b.Publish(KindAlertRaised, 1)

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected.
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("conversation.", 1)
	defer unsub()

	// Fill buffer.
	b.Publish(KindConversationUpdated, 1)
	// This one should be dropped (non-blocking).
	b.Publish(KindConversationUpdated, 2)

	evt := <-ch
	if evt.ContactID != 1 {
		t.Errorf("got contact %d, want 1", evt.ContactID)
	}
}
