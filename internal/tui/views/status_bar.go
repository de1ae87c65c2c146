package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// StatusBar displays persistent profile/foreground status.
type StatusBar struct {
	*tview.TextView
	profile    string
	foreground string
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv}
}

// SetProfile updates the profile name display.
func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.Render()
}

// SetForeground updates the open-conversation display.
func (sb *StatusBar) SetForeground(name string) {
	sb.foreground = name
	sb.Render()
}

// Render redraws the bar, including the clock.
func (sb *StatusBar) Render() {
	sb.Clear()

	where := "contacts"
	if sb.foreground != "" {
		where = sb.foreground
	}
	clock := time.Now().Format("15:04")

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s | %s | q:quit b:bubble", sb.profile, where, clock)
	_, _ = fmt.Fprint(sb, line)
}
