package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "session.sqlite"), DefaultDBTimeout)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadSessionMissing(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.LoadSession(context.Background()); !errors.Is(err, ErrMissingSession) {
		t.Fatalf("expected ErrMissingSession, got %v", err)
	}
}

func TestSaveAndLoadSession(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := Session{Token: "t1", UserID: "u1", Email: "a@example.com", FirstName: "Ada", LastName: "Lovelace"}
	if err := db.SaveSession(ctx, first); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	got, err := db.LoadSession(ctx)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if got != first {
		t.Fatalf("want %+v, got %+v", first, got)
	}
	if got.DisplayName() != "Ada Lovelace" {
		t.Fatalf("unexpected display name %q", got.DisplayName())
	}

	// A new login replaces every key, including names the server no longer sends.
	second := Session{Token: "t2", UserID: "u2"}
	if err := db.SaveSession(ctx, second); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	got, err = db.LoadSession(ctx)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if got != second {
		t.Fatalf("want %+v, got %+v", second, got)
	}
}

func TestSaveSessionRejectsIncomplete(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveSession(context.Background(), Session{Token: "only-token"}); err == nil {
		t.Fatal("expected an error for a session without user id")
	}
}

func TestSaveSessionWaitsForLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.sqlite")
	db, err := Open(path, DefaultDBTimeout)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	other := flock.New(path + lockFileSuffix)
	if err := other.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := db.SaveSession(ctx, Session{Token: "t", UserID: "u"}); err == nil {
		t.Fatal("expected SaveSession to give up while another process holds the lock")
	}
	if _, err := db.LoadSession(context.Background()); !errors.Is(err, ErrMissingSession) {
		t.Fatalf("nothing should be stored, got %v", err)
	}

	if err := other.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if err := db.SaveSession(context.Background(), Session{Token: "t", UserID: "u"}); err != nil {
		t.Fatalf("SaveSession after unlock: %v", err)
	}
}

func TestConcurrentSaveSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.sqlite")
	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db, err := Open(path, DefaultDBTimeout)
			if err != nil {
				errs <- err
				return
			}
			defer db.Close()
			errs <- db.SaveSession(context.Background(), Session{Token: "t", UserID: string(rune('a' + i))})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("SaveSession: %v", err)
		}
	}

	db := openTestDBAt(t, path)
	if got, err := db.LoadSession(context.Background()); err != nil || got.Token != "t" {
		t.Fatalf("expected one complete session, got %+v %v", got, err)
	}
}

func openTestDBAt(t *testing.T, path string) *DB {
	t.Helper()
	db, err := Open(path, DefaultDBTimeout)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
