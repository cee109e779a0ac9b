// Package action models the lifecycle of a single user-initiated mutation:
// idle -> pending -> (committed | failed) -> idle.
package action

import (
	"strings"
	"sync"
	"time"
)

// State of one control's in-flight mutation.
type State int

const (
	StateIdle State = iota
	StatePending
	StateCommitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Feedback is what the view layer renders for a control.
type Feedback struct {
	State   State
	Message string
}

// How long committed/failed feedback stays visible before the control
// returns to idle. Matches the original UI timings: a 1s success animation
// on quick-record buttons, 3s for messages.
const (
	SuccessTTL = 1 * time.Second
	FailureTTL = 3 * time.Second
)

type entry struct {
	state   State
	message string
	since   time.Time
}

// Tracker holds the per-control state machines. The double-submission guard
// is scoped per (user, control) pair, never globally: unrelated controls may
// run concurrently, and the last List to resolve wins the render.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

func key(userID, controlID string) string {
	return userID + "\x00" + controlID
}

// Begin transitions a control from idle to pending. It returns false while a
// prior submission on the same control is still pending; the caller must
// then drop the new submission without issuing any network mutation.
func (t *Tracker) Begin(userID, controlID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.entries[key(userID, controlID)]
	if e != nil && t.resolve(e) == StatePending {
		return false
	}

	t.entries[key(userID, controlID)] = &entry{state: StatePending, since: t.now()}
	return true
}

// Commit marks the pending mutation as succeeded. The control re-enables and
// the success feedback expires after SuccessTTL.
func (t *Tracker) Commit(userID, controlID string) {
	t.transition(userID, controlID, StateCommitted, "")
}

// Fail marks the pending mutation as failed with a message for the user.
// The control re-enables and the message expires after FailureTTL.
func (t *Tracker) Fail(userID, controlID, message string) {
	t.transition(userID, controlID, StateFailed, message)
}

func (t *Tracker) transition(userID, controlID string, state State, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[key(userID, controlID)] = &entry{state: state, message: message, since: t.now()}
}

// Peek reports the current feedback for a control, applying timed expiry.
func (t *Tracker) Peek(userID, controlID string) Feedback {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.entries[key(userID, controlID)]
	if e == nil {
		return Feedback{State: StateIdle}
	}
	state := t.resolve(e)
	if state == StateIdle {
		delete(t.entries, key(userID, controlID))
		return Feedback{State: StateIdle}
	}
	return Feedback{State: state, Message: e.message}
}

// Snapshot returns the live feedback for every control of one user.
func (t *Tracker) Snapshot(userID string) map[string]Feedback {
	t.mu.Lock()
	defer t.mu.Unlock()

	prefix := userID + "\x00"
	out := make(map[string]Feedback)
	for k, e := range t.entries {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		state := t.resolve(e)
		if state == StateIdle {
			delete(t.entries, k)
			continue
		}
		out[strings.TrimPrefix(k, prefix)] = Feedback{State: state, Message: e.message}
	}
	return out
}

// resolve applies timed expiry to a stored state. Pending never expires: a
// hung request leaves its control pending until the transport resolves it.
func (t *Tracker) resolve(e *entry) State {
	switch e.state {
	case StateCommitted:
		if t.now().Sub(e.since) >= SuccessTTL {
			return StateIdle
		}
	case StateFailed:
		if t.now().Sub(e.since) >= FailureTTL {
			return StateIdle
		}
	}
	return e.state
}
