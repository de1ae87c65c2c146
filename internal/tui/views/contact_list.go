package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"parley/internal/chat"
)

// ContactRow is one rendered row of the contact list.
type ContactRow struct {
	Contact chat.Contact
	Alerted bool
	Preview string
	LastAt  int64
}

// ContactList is the main contact table (K9s-inspired).
type ContactList struct {
	*tview.Table
	rows       []ContactRow
	selectedFn func() (int, int)
}

// NewContactList creates a new contact list table.
func NewContactList() *ContactList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true).SetTitle(" Contacts ")

	cl := &ContactList{Table: table}
	cl.selectedFn = table.GetSelection
	return cl
}

// Update refreshes the contact list with new data.
func (cl *ContactList) Update(rows []ContactRow) {
	cl.rows = rows
	cl.Clear()

	// Header row.
	cl.SetCell(0, 0, tview.NewTableCell(" Name").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	cl.SetCell(0, 1, tview.NewTableCell(" Last Message").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	cl.SetCell(0, 2, tview.NewTableCell(" Time").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))

	for i, r := range rows {
		row := i + 1
		name := r.Contact.Name
		if r.Alerted {
			name = fmt.Sprintf("* %s", name)
		}

		cl.SetCell(row, 0, tview.NewTableCell(" "+name).SetMaxWidth(24).SetExpansion(1))
		cl.SetCell(row, 1, tview.NewTableCell(" "+r.Preview).SetMaxWidth(40).SetExpansion(2))
		cl.SetCell(row, 2, tview.NewTableCell(" "+formatTimestamp(r.LastAt)).SetMaxWidth(12))
	}
}

// SelectedContact returns the id of the currently selected contact, 0 if none.
func (cl *ContactList) SelectedContact() int64 {
	row, _ := cl.selectedFn()
	idx := row - 1 // account for header
	if idx >= 0 && idx < len(cl.rows) {
		return cl.rows[idx].Contact.ID
	}
	return 0
}

func formatTimestamp(ms int64) string {
	if ms == 0 {
		return ""
	}
	t := time.UnixMilli(ms)
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}
