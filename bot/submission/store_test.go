package submission

import "testing"

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	if _, ok := store.Get(42); ok {
		t.Error("empty store should not return a submission")
	}

	store.Put(&Submission{UserID: 42, Grievance: "broken streetlight"})
	s, ok := store.Get(42)
	if !ok || s.Grievance != "broken streetlight" {
		t.Errorf("expected stored submission, got %v (ok=%v)", s, ok)
	}

	// A new report replaces the open one for the same user.
	store.Put(&Submission{UserID: 42, Grievance: "overflowing drain"})
	s, ok = store.Get(42)
	if !ok || s.Grievance != "overflowing drain" {
		t.Errorf("expected replacement submission, got %v (ok=%v)", s, ok)
	}

	// Other users are unaffected.
	store.Put(&Submission{UserID: 7, Grievance: "garbage pileup"})
	if s, _ := store.Get(42); s.Grievance != "overflowing drain" {
		t.Error("unrelated Put changed another user's submission")
	}

	store.Delete(42)
	if _, ok := store.Get(42); ok {
		t.Error("submission should be gone after Delete")
	}
	if _, ok := store.Get(7); !ok {
		t.Error("Delete removed the wrong user's submission")
	}
}
