package directory

import (
	"errors"
	"path/filepath"
	"testing"

	"parley/internal/chat"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "directory.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateSeedsContacts(t *testing.T) {
	db := testDB(t)

	contacts, err := db.ListContacts()
	if err != nil {
		t.Fatal(err)
	}
	if len(contacts) != 4 {
		t.Fatalf("got %d contacts, want 4", len(contacts))
	}
	if contacts[0].Name != "Cat" || contacts[0].ID != 1 {
		t.Errorf("first contact = %+v, want Cat (1)", contacts[0])
	}
	// Seeded ids ascend.
	for i := 1; i < len(contacts); i++ {
		if contacts[i].ID <= contacts[i-1].ID {
			t.Errorf("contacts out of id order at %d", i)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	first, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if !first.Changed {
		t.Error("first Migrate() Changed = false, want true")
	}

	second, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if second.Changed {
		t.Error("second Migrate() Changed = true, want false")
	}
}

func TestGetContact(t *testing.T) {
	db := testDB(t)

	c, err := db.GetContact(2)
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || c.Name != "Dog" {
		t.Errorf("GetContact(2) = %+v, want Dog", c)
	}

	missing, err := db.GetContact(999)
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("GetContact(999) = %+v, want nil", missing)
	}
}

func TestLoadBuildsSnapshot(t *testing.T) {
	db := testDB(t)

	d, err := Load(db)
	if err != nil {
		t.Fatal(err)
	}

	contacts := d.Contacts()
	if len(contacts) != 4 {
		t.Fatalf("got %d contacts, want 4", len(contacts))
	}
	if contacts[0].ID != 1 || contacts[0].Name != "Cat" || !contacts[0].BubbleCapable {
		t.Errorf("first contact = %+v, want bubble-capable Cat", contacts[0])
	}
	// Sheep is seeded without bubble capability.
	if contacts[3].BubbleCapable {
		t.Error("Sheep should not be bubble-capable")
	}
}

func TestReplyTemplates(t *testing.T) {
	db := testDB(t)
	d, err := Load(db)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		id       int64
		incoming string
		want     string
	}{
		{"static reply", 1, "hello there", "Meow"},
		{"static reply ignores input", 2, "anything", "Woof woof!!"},
		{"echo template", 3, "polly wants a cracker", "polly wants a cracker"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Reply(tt.id, tt.incoming)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Reply(%d, %q) = %q, want %q", tt.id, tt.incoming, got, tt.want)
			}
		})
	}
}

func TestReplyIsPure(t *testing.T) {
	db := testDB(t)
	d, err := Load(db)
	if err != nil {
		t.Fatal(err)
	}

	first, _ := d.Reply(3, "same input")
	second, _ := d.Reply(3, "same input")
	if first != second {
		t.Errorf("Reply not deterministic: %q vs %q", first, second)
	}
}

func TestReplyUnknownContact(t *testing.T) {
	db := testDB(t)
	d, err := Load(db)
	if err != nil {
		t.Fatal(err)
	}

	_, err = d.Reply(999, "hi")
	if !errors.Is(err, chat.ErrNotFound) {
		t.Errorf("Reply(999) error = %v, want chat.ErrNotFound", err)
	}
}
