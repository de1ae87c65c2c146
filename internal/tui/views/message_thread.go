package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"parley/internal/chat"
	"parley/internal/tui/ui"
)

// MessageThread displays one conversation and a composer.
type MessageThread struct {
	*tview.Flex
	theme       *ui.Theme
	messages    *tview.TextView
	composer    *tview.InputField
	contactName string
	onSend      func(text string)
}

// NewMessageThread creates a new message thread view.
func NewMessageThread(theme *ui.Theme) *MessageThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Messages ")
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Compose (Enter to send, Esc to go back) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, false).
		AddItem(composer, 3, 0, true)

	mt := &MessageThread{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		composer: composer,
	}

	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && mt.onSend != nil {
			text := composer.GetText()
			if text != "" {
				mt.onSend(text)
				composer.SetText("")
			}
		}
	})

	return mt
}

// SetOnSend sets the callback when a message is sent.
func (mt *MessageThread) SetOnSend(fn func(text string)) {
	mt.onSend = fn
}

// SetContact updates the thread title for the open conversation.
func (mt *MessageThread) SetContact(name string) {
	mt.contactName = name
	mt.messages.SetTitle(fmt.Sprintf(" %s ", name))
}

// Composer returns the input field for focus handling.
func (mt *MessageThread) Composer() *tview.InputField {
	return mt.composer
}

// Update re-renders the full message sequence.
func (mt *MessageThread) Update(msgs []chat.Message) {
	mt.messages.Clear()
	for _, m := range msgs {
		_, _ = fmt.Fprint(mt.messages, RenderMessage(m, mt.contactName))
	}
	mt.messages.ScrollToEnd()
}

// RenderMessage formats a single message line.
func RenderMessage(m chat.Message, contactName string) string {
	ts := time.UnixMilli(m.Timestamp).Format("15:04")
	who := contactName
	color := "aqua"
	if m.FromMe() {
		who = "You"
		color = "white"
	}
	body := m.Text
	if m.PhotoRef != "" {
		body = fmt.Sprintf("[photo %s (%s)]", m.PhotoRef, m.PhotoMime)
	}
	return fmt.Sprintf("[gray]%s[-] [%s::b]%s:[-:-:-] %s\n", ts, color, who, tview.Escape(body))
}
