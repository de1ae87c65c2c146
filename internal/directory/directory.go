package directory

import (
	"fmt"
	"strings"

	"parley/internal/chat"
)

// Directory is the in-memory contact directory, loaded once at startup and
// read-only afterwards. It implements chat.Directory.
type Directory struct {
	ordered []Contact
	byID    map[int64]Contact
}

// Load reads all contacts from the database into memory.
func Load(db *DB) (*Directory, error) {
	rows, err := db.ListContacts()
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("contact directory is empty; database not seeded")
	}

	d := &Directory{
		ordered: rows,
		byID:    make(map[int64]Contact, len(rows)),
	}
	for _, c := range rows {
		d.byID[c.ID] = c
	}
	return d, nil
}

// Contacts returns the directory snapshot in id order.
func (d *Directory) Contacts() []chat.Contact {
	out := make([]chat.Contact, len(d.ordered))
	for i, c := range d.ordered {
		out[i] = chat.Contact{
			ID:            c.ID,
			Name:          c.Name,
			Avatar:        c.Avatar,
			BubbleCapable: c.BubbleCapable,
		}
	}
	return out
}

// Reply applies the contact's reply template to the incoming text. Pure
// function of (contact, text).
func (d *Directory) Reply(contactID int64, incoming string) (string, error) {
	c, ok := d.byID[contactID]
	if !ok {
		return "", fmt.Errorf("contact %d: %w", contactID, chat.ErrNotFound)
	}
	if strings.Contains(c.ReplyTemplate, "%s") {
		return strings.ReplaceAll(c.ReplyTemplate, "%s", incoming), nil
	}
	return c.ReplyTemplate, nil
}
