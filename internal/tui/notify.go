package tui

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Presenter renders alerts on a concrete surface. The TUI app attaches
// itself once its widgets exist.
type Presenter interface {
	PresentAlert(contactID int64, isUpdate bool)
	PresentBubble(contactID int64)
	DismissAlert(contactID int64, silence bool)
}

// Notifier implements chat.NotificationSink. Until a presenter is attached
// it reports itself unavailable; the repository logs and swallows that, so
// message delivery is never coupled to the UI being up.
type Notifier struct {
	logger         *zap.Logger
	bubblesEnabled bool

	mu        sync.RWMutex
	presenter Presenter
}

// NewNotifier creates a sink gated by the bubbles_enabled config policy.
func NewNotifier(bubblesEnabled bool, logger *zap.Logger) *Notifier {
	return &Notifier{
		bubblesEnabled: bubblesEnabled,
		logger:         logger,
	}
}

// Attach binds the rendering surface.
func (n *Notifier) Attach(p Presenter) {
	n.mu.Lock()
	n.presenter = p
	n.mu.Unlock()
}

// Detach unbinds the rendering surface on UI shutdown.
func (n *Notifier) Detach() {
	n.mu.Lock()
	n.presenter = nil
	n.mu.Unlock()
}

func (n *Notifier) current() (Presenter, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.presenter == nil {
		return nil, fmt.Errorf("no presenter attached")
	}
	return n.presenter, nil
}

// ShowAlert renders a fresh or updated alert, as a bubble when requested.
func (n *Notifier) ShowAlert(contactID int64, asBubble, isUpdate bool) error {
	p, err := n.current()
	if err != nil {
		return err
	}
	if asBubble {
		p.PresentBubble(contactID)
		return nil
	}
	p.PresentAlert(contactID, isUpdate)
	return nil
}

// UpdateAlert dismisses or silences the alert for a conversation.
func (n *Notifier) UpdateAlert(contactID int64, silence bool) error {
	p, err := n.current()
	if err != nil {
		return err
	}
	p.DismissAlert(contactID, silence)
	return nil
}

// CanBubble is the sink-side policy: bubbles can be disabled globally.
func (n *Notifier) CanBubble(int64) bool {
	return n.bubblesEnabled
}
