package diagnosis

import (
	"errors"
	"testing"
	"time"
)

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(time.Minute)
	kb := twoDiseaseSnapshot()

	sess := store.Create(kb)
	if sess.ID == "" {
		t.Fatal("expected a generated session ID")
	}
	if sess.Status != StatusAsking {
		t.Errorf("new session must start asking, got %s", sess.Status)
	}

	got, err := store.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("expected session %s, got %s", sess.ID, got.ID)
	}
}

func TestStore_UniqueIDs(t *testing.T) {
	store := NewStore(time.Minute)
	kb := twoDiseaseSnapshot()

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		sess := store.Create(kb)
		if seen[sess.ID] {
			t.Fatalf("duplicate session ID %s", sess.ID)
		}
		seen[sess.ID] = true
	}
}

func TestStore_UnknownSession(t *testing.T) {
	store := NewStore(time.Minute)

	if _, err := store.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	err := store.Update("missing", func(*Session) error { return nil })
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound from Update, got %v", err)
	}
}

func TestStore_Expiry(t *testing.T) {
	store := NewStore(20 * time.Millisecond)
	sess := store.Create(twoDiseaseSnapshot())

	time.Sleep(50 * time.Millisecond)

	if _, err := store.Get(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected expired session to report ErrSessionNotFound, got %v", err)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore(time.Minute)
	sess := store.Create(twoDiseaseSnapshot())

	copied, err := store.Get(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	copied.Status = StatusConcluded
	copied.Answers = append(copied.Answers, Answer{SymptomCode: "G01", Value: true})

	fresh, err := store.Get(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Status != StatusAsking || len(fresh.Answers) != 0 {
		t.Error("mutating a Get result leaked into the stored session")
	}
}

func TestSession_RecordAnswer(t *testing.T) {
	sess := &Session{ID: "s1", Status: StatusAsking}

	if err := sess.RecordAnswer("G01", true); err != nil {
		t.Fatalf("first answer rejected: %v", err)
	}
	if err := sess.RecordAnswer("G01", false); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected duplicate answer to be rejected, got %v", err)
	}
	if len(sess.Answers) != 1 || sess.Answers[0].Value != true {
		t.Errorf("rejected duplicate must not modify state: %+v", sess.Answers)
	}

	sess.Conclude()
	if err := sess.RecordAnswer("G02", true); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected answer after conclusion to be rejected, got %v", err)
	}
}
