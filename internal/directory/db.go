package directory

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite connection for the profile-owned directory.db.
type DB struct {
	*sql.DB
}

// Open creates a new SQLite connection with WAL mode and recommended pragmas.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Verify connection.
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &DB{db}, nil
}

// ListContacts returns all seeded contacts in id order.
func (db *DB) ListContacts() ([]Contact, error) {
	rows, err := db.Query(`
		SELECT id, name, avatar, bubble_capable, reply_template
		FROM contacts
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var contacts []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Avatar, &c.BubbleCapable, &c.ReplyTemplate); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// GetContact returns a single contact by id, nil if unknown.
func (db *DB) GetContact(id int64) (*Contact, error) {
	var c Contact
	err := db.QueryRow(`
		SELECT id, name, avatar, bubble_capable, reply_template
		FROM contacts
		WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Avatar, &c.BubbleCapable, &c.ReplyTemplate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
