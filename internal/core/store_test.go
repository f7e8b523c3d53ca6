package core

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClock returns a controllable time source for a Store.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore() (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 10, 18, 9, 0, 0, 0, time.UTC)}
	s := NewStore()
	s.now = clock.Now
	return s, clock
}

func TestStore_CreateGet(t *testing.T) {
	s, _ := newTestStore()

	sess := s.Create(sampleDocument())
	if sess.ID == "" {
		t.Fatal("Create() returned an empty ID")
	}

	got, err := s.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Document.Len() != 5 {
		t.Errorf("Document.Len() = %d, want 5", got.Document.Len())
	}

	if _, err := s.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrSessionNotFound", err)
	}
}

func TestStore_SnapshotsAreIsolated(t *testing.T) {
	s, _ := newTestStore()
	sess := s.Create(sampleDocument())

	snap, _ := s.Get(sess.ID)
	snap.Document.Rows[0].Title = "tampered"

	again, _ := s.Get(sess.ID)
	if again.Document.Rows[0].Title != "India 0" {
		t.Error("modifying a snapshot changed the stored session")
	}
}

func TestStore_Update(t *testing.T) {
	s, clock := newTestStore()
	sess := s.Create(Document{})
	clock.Advance(time.Minute)

	got, err := s.Update(sess.ID, func(cur Session) (Session, error) {
		cur.Document.Title = "Updated"
		cur.ID = "hijacked"
		return cur, nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("Update() changed the ID to %q", got.ID)
	}
	if got.Document.Title != "Updated" {
		t.Errorf("Title = %q, want Updated", got.Document.Title)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("UpdatedAt %v not after CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestStore_UpdateErrorLeavesSessionUnchanged(t *testing.T) {
	s, _ := newTestStore()
	sess := s.Create(Document{Title: "Before"})
	boom := errors.New("boom")

	_, err := s.Update(sess.ID, func(cur Session) (Session, error) {
		cur.Document.Title = "After"
		return cur, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want boom", err)
	}

	got, _ := s.Get(sess.ID)
	if got.Document.Title != "Before" {
		t.Errorf("Title = %q, want Before", got.Document.Title)
	}
}

func TestStore_Sweep(t *testing.T) {
	s, clock := newTestStore()
	old := s.Create(Document{})
	clock.Advance(2 * time.Hour)
	fresh := s.Create(Document{})

	if removed := s.Sweep(time.Hour); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if _, err := s.Get(old.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Error("idle session survived the sweep")
	}
	if _, err := s.Get(fresh.ID); err != nil {
		t.Errorf("fresh session was swept: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	s, _ := newTestStore()
	sess := s.Create(Document{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Update(sess.ID, func(cur Session) (Session, error) {
				cur.Document.Rows = append(cur.Document.Rows, Record{Section: "india"})
				return cur, nil
			})
		}()
	}
	wg.Wait()

	got, _ := s.Get(sess.ID)
	if got.Document.Len() != 50 {
		t.Errorf("Len() = %d, want 50", got.Document.Len())
	}
}
