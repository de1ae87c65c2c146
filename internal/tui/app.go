package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"parley/internal/bus"
	"parley/internal/chat"
	"parley/internal/tui/ui"
	"parley/internal/tui/views"
)

// App is the terminal client shell. It is both the repository's observer
// (conversation subscriptions and bus events drive redraws) and its
// notification presenter (alerts land on the flash bar, bubbles as a
// floating page).
type App struct {
	app      *tview.Application
	pages    *tview.Pages
	theme    *ui.Theme
	repo     *chat.Repository
	notifier *Notifier
	bus      *bus.Bus
	logger   *zap.Logger
	profile  string

	contactList *views.ContactList
	thread      *views.MessageThread
	statusBar   *views.StatusBar
	flashBar    *ui.FlashBar
	flash       *ui.FlashModel

	// sub and active are touched only from the tview event loop.
	sub    *chat.Subscription
	active int64

	refreshCh chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(repo *chat.Repository, notifier *Notifier, b *bus.Bus, logger *zap.Logger, profileName string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:         tview.NewApplication(),
		pages:       tview.NewPages(),
		theme:       theme,
		repo:        repo,
		notifier:    notifier,
		bus:         b,
		logger:      logger,
		profile:     profileName,
		contactList: views.NewContactList(),
		thread:      views.NewMessageThread(theme),
		statusBar:   views.NewStatusBar(),
		flashBar:    ui.NewFlashBar(theme),
		flash:       ui.NewFlashModel(),
		refreshCh:   make(chan struct{}, 1),
		ctx:         ctx,
		cancel:      cancel,
	}

	a.statusBar.SetProfile(profileName)
	a.setupCallbacks()
	a.setupLayout()

	return a
}

// signalRefresh coalesces redraw requests; safe from any goroutine.
func (a *App) signalRefresh() {
	select {
	case a.refreshCh <- struct{}{}:
	default:
	}
}

func (a *App) setupCallbacks() {
	a.contactList.SetSelectedFunc(func(row, col int) {
		if id := a.contactList.SelectedContact(); id != 0 {
			a.openThread(id)
		}
	})

	a.thread.SetOnSend(func(text string) {
		id := a.active
		if id == 0 {
			return
		}
		if err := a.repo.Send(id, text, "", ""); err != nil {
			a.flash.Err(err)
		}
		a.signalRefresh()
	})

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEscape:
			if name, _ := a.pages.GetFrontPage(); name == "bubble" {
				a.pages.RemovePage("bubble")
				return nil
			}
			if a.active != 0 {
				a.closeThread()
				return nil
			}
		case event.Key() == tcell.KeyRune && event.Rune() == 'q' && a.active == 0:
			a.app.Stop()
			return nil
		case event.Key() == tcell.KeyCtrlB:
			if id := a.active; id != 0 {
				a.requestBubble(id)
				return nil
			}
		}
		return event
	})
}

func (a *App) setupLayout() {
	main := tview.NewFlex().
		AddItem(a.contactList, 36, 0, true).
		AddItem(a.thread, 0, 1, false)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(main, 0, 1, true).
		AddItem(a.flashBar, 1, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.pages.AddPage("main", root, true, true)
	a.app.SetRoot(a.pages, true)
}

// Run attaches the notifier, starts the observers and blocks driving the UI.
func (a *App) Run() error {
	a.notifier.Attach(a)
	defer a.notifier.Detach()
	defer a.cancel()

	go a.watch()

	a.redraw()
	return a.app.Run()
}

// Stop terminates the UI loop.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

func (a *App) openThread(id int64) {
	if a.active != 0 {
		a.closeThread()
	}
	ct, ok := a.repo.Contact(id)
	if !ok {
		return
	}

	if err := a.repo.SetForeground(id); err != nil {
		a.flash.Err(err)
		return
	}
	a.active = id
	a.thread.SetContact(ct.Name)
	a.statusBar.SetForeground(ct.Name)

	// The subscription only signals; rendering always reads a fresh
	// snapshot on the event loop.
	sub, err := a.repo.Watch(id, func([]chat.Message) {
		a.signalRefresh()
	})
	if err != nil {
		a.flash.Err(err)
		return
	}
	a.sub = sub
	a.redraw()
	a.app.SetFocus(a.thread.Composer())
}

// closeThread releases the subscription and foreground on every exit path.
func (a *App) closeThread() {
	if a.sub != nil {
		a.sub.Close()
		a.sub = nil
	}
	if a.active != 0 {
		a.repo.ClearForeground(a.active)
		a.active = 0
	}
	a.statusBar.SetForeground("")
	a.redraw()
	a.app.SetFocus(a.contactList)
}

func (a *App) requestBubble(id int64) {
	if !a.repo.CanBubble(id) {
		a.flash.Warn("bubbles are not available for this contact")
		a.signalRefresh()
		return
	}
	if err := a.repo.RequestBubble(id); err != nil {
		a.flash.Err(err)
		a.signalRefresh()
	}
}

// watch funnels every redraw source (bus events, flash changes, subscription
// signals) into serialized event-loop updates.
func (a *App) watch() {
	events, unsub := a.bus.Subscribe("", 64)
	defer unsub()

	// The ticker keeps the clock current and retires expired flash messages.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-events:
		case <-a.flash.Watch():
		case <-a.refreshCh:
		case <-ticker.C:
		}
		a.app.QueueUpdateDraw(a.redraw)
	}
}

// redraw re-renders everything from repository state. Runs on the event loop.
func (a *App) redraw() {
	if a.active != 0 {
		if snap, err := a.repo.Snapshot(a.active); err == nil {
			a.thread.Update(snap)
		}
	}
	a.refreshContacts()
	a.flashBar.Update(a.flash.GetMessage())
	a.statusBar.Render()
}

func (a *App) refreshContacts() {
	contacts := a.repo.Contacts()
	rows := make([]views.ContactRow, 0, len(contacts))
	for _, ct := range contacts {
		row := views.ContactRow{Contact: ct}
		if snap, err := a.repo.Snapshot(ct.ID); err == nil && len(snap) > 0 {
			last := snap[len(snap)-1]
			row.Preview = last.Text
			if last.PhotoRef != "" {
				row.Preview = "[photo]"
			}
			row.LastAt = last.Timestamp
		}
		row.Alerted = a.repo.Alerted(ct.ID)
		rows = append(rows, row)
	}
	a.contactList.Update(rows)
}

// PresentAlert implements Presenter. Called from scheduler workers; it only
// touches the thread-safe flash model, which signals its own redraw.
func (a *App) PresentAlert(contactID int64, isUpdate bool) {
	ct, ok := a.repo.Contact(contactID)
	if !ok {
		return
	}
	if isUpdate {
		a.flash.Info(fmt.Sprintf("Updated conversation with %s", ct.Name))
	} else {
		a.flash.Info(fmt.Sprintf("New message from %s", ct.Name))
	}
}

// DismissAlert implements Presenter.
func (a *App) DismissAlert(contactID int64, silence bool) {
	if silence {
		a.flash.Clear()
	}
}

// PresentBubble implements Presenter. The bubble is a floating page over
// whatever is currently shown, regardless of foreground state.
func (a *App) PresentBubble(contactID int64) {
	ct, ok := a.repo.Contact(contactID)
	if !ok {
		return
	}
	snap, err := a.repo.Snapshot(contactID)
	if err != nil {
		return
	}

	a.app.QueueUpdateDraw(func() {
		content := tview.NewTextView().SetDynamicColors(true).SetWordWrap(true)
		content.SetBorder(true)
		content.SetBorderColor(a.theme.BubbleBorderColor)
		content.SetTitle(fmt.Sprintf(" %s (bubble, Esc to close) ", ct.Name))
		content.SetTitleColor(a.theme.TitleColor)

		start := 0
		if len(snap) > 8 {
			start = len(snap) - 8
		}
		for _, m := range snap[start:] {
			_, _ = fmt.Fprint(content, views.RenderMessage(m, ct.Name))
		}

		modal := tview.NewFlex().
			AddItem(nil, 0, 1, false).
			AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
				AddItem(nil, 0, 1, false).
				AddItem(content, 12, 0, true).
				AddItem(nil, 0, 1, false), 60, 0, true).
			AddItem(nil, 0, 1, false)

		a.pages.AddPage("bubble", modal, true, true)
	})
}
