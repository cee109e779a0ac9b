package stubservice

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type user struct {
	ID           string
	Email        string
	PasswordHash []byte
}

type row struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	TypeID     int       `json:"activity_type_id"`
	RecordedAt time.Time `json:"recorded_at"`
}

// memoryStore is the in-memory backing of the stand-in service.
type memoryStore struct {
	mu         sync.Mutex
	usersByID  map[string]*user
	userIDs    map[string]string // email -> id
	activities map[string]*row
	revoked    map[string]struct{}
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		usersByID:  make(map[string]*user),
		userIDs:    make(map[string]string),
		activities: make(map[string]*row),
		revoked:    make(map[string]struct{}),
	}
}

func (s *memoryStore) createUser(email string, hash []byte) (*user, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.userIDs[email]; exists {
		return nil, false
	}
	u := &user{ID: uuid.NewString(), Email: email, PasswordHash: hash}
	s.usersByID[u.ID] = u
	s.userIDs[email] = u.ID
	return u, true
}

func (s *memoryStore) userByEmail(email string) (*user, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.userIDs[email]
	if !ok {
		return nil, false
	}
	return s.usersByID[id], true
}

func (s *memoryStore) userByID(id string) (*user, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.usersByID[id]
	return u, ok
}

func (s *memoryStore) revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = struct{}{}
}

func (s *memoryStore) isRevoked(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[token]
	return ok
}

func (s *memoryStore) insertActivity(userID string, typeID int, recordedAt time.Time) *row {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := &row{ID: uuid.NewString(), UserID: userID, TypeID: typeID, RecordedAt: recordedAt}
	s.activities[r.ID] = r
	return r
}

// listActivities returns the caller's rows with optional type filtering,
// newest first. Ownership filtering is unconditional.
func (s *memoryStore) listActivities(userID string, typeID int) []row {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]row, 0)
	for _, r := range s.activities {
		if r.UserID != userID {
			continue
		}
		if typeID != 0 && r.TypeID != typeID {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})
	return out
}

func (s *memoryStore) updateActivity(userID, id string, recordedAt time.Time) (*row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.activities[id]
	if !ok || r.UserID != userID {
		return nil, false
	}
	r.RecordedAt = recordedAt
	copied := *r
	return &copied, true
}

func (s *memoryStore) deleteActivity(userID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.activities[id]
	if !ok || r.UserID != userID {
		return false
	}
	delete(s.activities, id)
	return true
}
