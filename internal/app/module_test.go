package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"parley/internal/bus"
	"parley/internal/chat"
	"parley/internal/config"
	"parley/internal/directory"
	"parley/internal/lock"
	"parley/internal/tui"
)

// recordingSink counts alerts so the test can assert notification behavior
// without a terminal attached.
type recordingSink struct {
	mu    sync.Mutex
	shows int
}

func (s *recordingSink) ShowAlert(contactID int64, asBubble, isUpdate bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shows++
	return nil
}

func (s *recordingSink) UpdateAlert(contactID int64, silence bool) error { return nil }

func (s *recordingSink) CanBubble(contactID int64) bool { return true }

func (s *recordingSink) showCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shows
}

func TestClientLifecycle(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "parley-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	profileDir := filepath.Join(tmpDir, "main")
	if err := os.MkdirAll(profileDir, 0700); err != nil {
		t.Fatal(err)
	}

	lk, err := lock.Acquire(profileDir)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = lk.Release() }()

	db, err := directory.Open(filepath.Join(profileDir, "directory.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}

	dir, err := directory.Load(db)
	if err != nil {
		t.Fatal(err)
	}

	logger, _ := zap.NewDevelopment()
	b := bus.New()
	cfg := config.Default()

	sched := chat.NewScheduler(dir, 10*time.Millisecond, cfg.Workers, cfg.QueueDepth, logger)
	sched.Start(context.Background())
	defer sched.Stop()

	sink := &recordingSink{}
	repo := chat.NewRepository(dir, sched, sink, b, logger)
	defer repo.Close()

	contacts := repo.Contacts()
	if len(contacts) != 4 {
		t.Fatalf("contacts = %d, want 4", len(contacts))
	}
	catID := contacts[0].ID

	// Send while backgrounded: the seeded reply should arrive and raise
	// exactly one alert.
	if err := repo.Send(catID, "hello", "", ""); err != nil {
		t.Fatalf("Send error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		snap, err := repo.Snapshot(catID)
		if err != nil {
			t.Fatalf("Snapshot error = %v", err)
		}
		if len(snap) == 2 {
			if snap[0].SenderID != chat.LocalUserID {
				t.Errorf("first sender = %d, want local user", snap[0].SenderID)
			}
			if snap[1].SenderID != catID {
				t.Errorf("reply sender = %d, want %d", snap[1].SenderID, catID)
			}
			if snap[1].Text != "Meow" {
				t.Errorf("reply text = %q, want %q", snap[1].Text, "Meow")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("reply never arrived, have %d messages", len(snap))
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := sink.showCount(); got != 1 {
		t.Errorf("alerts shown = %d, want 1", got)
	}
	if !repo.Alerted(catID) {
		t.Error("conversation should be alerted")
	}

	if err := repo.SetForeground(catID); err != nil {
		t.Fatalf("SetForeground error = %v", err)
	}
	if repo.Alerted(catID) {
		t.Error("alert should clear when foregrounded")
	}
}

func TestModuleGraph(t *testing.T) {
	var ui *tui.App
	err := fx.ValidateApp(
		Module(Params{ProfileName: "main"}),
		fx.Populate(&ui),
	)
	if err != nil {
		t.Fatalf("ValidateApp error = %v", err)
	}
}
