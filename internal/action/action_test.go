package action

import (
	"testing"
	"time"
)

func TestBeginGuardsDoubleSubmission(t *testing.T) {
	tr := NewTracker()

	if !tr.Begin("user-1", "quick:2") {
		t.Fatal("first Begin() = false, want true")
	}
	if tr.Begin("user-1", "quick:2") {
		t.Error("second Begin() while pending = true, want false")
	}

	// A different control of the same user is not guarded.
	if !tr.Begin("user-1", "quick:3") {
		t.Error("Begin() on unrelated control = false, want true")
	}

	// The same control of a different user is not guarded.
	if !tr.Begin("user-2", "quick:2") {
		t.Error("Begin() for different user = false, want true")
	}
}

func TestCommitReleasesControlAfterSuccessTTL(t *testing.T) {
	tr := NewTracker()
	now := time.Now()
	tr.now = func() time.Time { return now }

	tr.Begin("u", "quick:1")
	tr.Commit("u", "quick:1")

	if got := tr.Peek("u", "quick:1"); got.State != StateCommitted {
		t.Fatalf("Peek() state = %v, want committed", got.State)
	}
	// Feedback visible, but the control already accepts a new submission
	// only once feedback expires.
	now = now.Add(SuccessTTL)
	if got := tr.Peek("u", "quick:1"); got.State != StateIdle {
		t.Fatalf("Peek() after TTL state = %v, want idle", got.State)
	}
	if !tr.Begin("u", "quick:1") {
		t.Error("Begin() after expiry = false, want true")
	}
}

func TestFailKeepsMessageUntilFailureTTL(t *testing.T) {
	tr := NewTracker()
	now := time.Now()
	tr.now = func() time.Time { return now }

	tr.Begin("u", "add:1")
	tr.Fail("u", "add:1", "service said no")

	got := tr.Peek("u", "add:1")
	if got.State != StateFailed || got.Message != "service said no" {
		t.Fatalf("Peek() = %+v, want failed with message", got)
	}

	// A failed control re-enables immediately.
	if !tr.Begin("u", "add:1") {
		t.Error("Begin() after failure = false, want true")
	}

	tr.Fail("u", "add:1", "again")
	now = now.Add(FailureTTL)
	if got := tr.Peek("u", "add:1"); got.State != StateIdle {
		t.Errorf("Peek() after TTL = %+v, want idle", got)
	}
}

func TestSnapshotScopedToUser(t *testing.T) {
	tr := NewTracker()
	tr.Begin("alice", "quick:1")
	tr.Begin("bob", "quick:2")

	snap := tr.Snapshot("alice")
	if len(snap) != 1 {
		t.Fatalf("Snapshot() returned %d entries, want 1", len(snap))
	}
	if snap["quick:1"].State != StatePending {
		t.Errorf("Snapshot()[quick:1] = %+v, want pending", snap["quick:1"])
	}
}

func TestPendingNeverExpires(t *testing.T) {
	tr := NewTracker()
	now := time.Now()
	tr.now = func() time.Time { return now }

	tr.Begin("u", "edit")
	now = now.Add(time.Hour)

	if got := tr.Peek("u", "edit"); got.State != StatePending {
		t.Errorf("Peek() after an hour = %v, want pending", got.State)
	}
	if tr.Begin("u", "edit") {
		t.Error("Begin() on hung control = true, want false")
	}
}
