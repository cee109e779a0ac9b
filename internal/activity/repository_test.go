package activity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mfukui/actlog/internal/platform"
	"github.com/mfukui/actlog/internal/stubservice"
)

const anonKey = "test-anon-key"

// newTestEnv runs the stand-in service and signs in a fresh user.
func newTestEnv(t *testing.T) (*Repository, *platform.Session, *atomic.Int32) {
	t.Helper()

	svc := stubservice.New(anonKey, "test-token-secret")
	svc.Seed("a@b.com", "secret1")

	var requests atomic.Int32
	handler := svc.Handler()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client := platform.New(srv.URL, anonKey)
	session, err := client.Auth().SignInWithPassword(context.Background(), "a@b.com", "secret1")
	if err != nil {
		t.Fatalf("SignInWithPassword() error = %v", err)
	}

	requests.Store(0)
	return NewRepository(client), session, &requests
}

func TestInsertAndListRoundTrip(t *testing.T) {
	repo, session, _ := newTestEnv(t)
	ctx := context.Background()

	older := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	for _, at := range []time.Time{older, newer} {
		created, err := repo.Insert(ctx, session, TypeStudy, at)
		if err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		if created.ID == "" {
			t.Error("Insert() returned empty id")
		}
		if created.UserID != session.User.ID {
			t.Errorf("Insert() user id = %q, want session user %q", created.UserID, session.User.ID)
		}
	}

	records, err := repo.List(ctx, session, TypeStudy)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(records))
	}
	if !records[0].RecordedAt.After(records[1].RecordedAt) {
		t.Error("List() not ordered newest first")
	}

	// Other types stay empty, and empty is not an error.
	empty, err := repo.List(ctx, session, TypeWorkout)
	if err != nil {
		t.Fatalf("List() empty type error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("List() for untouched type returned %d records, want 0", len(empty))
	}
}

func TestInsertValidationShortCircuits(t *testing.T) {
	repo, session, requests := newTestEnv(t)

	_, err := repo.Insert(context.Background(), session, TypeWorkout, time.Time{})
	if err != ErrInvalidTimestamp {
		t.Fatalf("Insert() error = %v, want ErrInvalidTimestamp", err)
	}
	if got := requests.Load(); got != 0 {
		t.Errorf("network requests during invalid insert = %d, want 0", got)
	}
}

func TestUpdateValidationShortCircuits(t *testing.T) {
	repo, session, requests := newTestEnv(t)

	_, err := repo.Update(context.Background(), session, "some-id", time.Time{})
	if err != ErrInvalidTimestamp {
		t.Fatalf("Update() error = %v, want ErrInvalidTimestamp", err)
	}
	if got := requests.Load(); got != 0 {
		t.Errorf("network requests during invalid update = %d, want 0", got)
	}
}

func TestUpdateMovesTimestamp(t *testing.T) {
	repo, session, _ := newTestEnv(t)
	ctx := context.Background()

	created, err := repo.Insert(ctx, session, TypeMeditation, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	moved := time.Date(2024, 3, 4, 5, 6, 0, 0, time.UTC)
	updated, err := repo.Update(ctx, session, created.ID, moved)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !updated.RecordedAt.Equal(moved) {
		t.Errorf("Update() recorded at = %v, want %v", updated.RecordedAt, moved)
	}

	records, err := repo.List(ctx, session, TypeMeditation)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 || !records[0].RecordedAt.Equal(moved) {
		t.Errorf("List() after update = %+v, want single record at %v", records, moved)
	}
}

func TestUpdateUnknownIDFails(t *testing.T) {
	repo, session, _ := newTestEnv(t)

	_, err := repo.Update(context.Background(), session, "no-such-id", time.Now())
	if err == nil {
		t.Fatal("Update() on unknown id succeeded, want error")
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	repo, session, _ := newTestEnv(t)
	ctx := context.Background()

	created, err := repo.Insert(ctx, session, TypeWorkout, time.Now().UTC())
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := repo.Delete(ctx, session, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	records, err := repo.List(ctx, session, TypeWorkout)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("List() after delete returned %d records, want 0", len(records))
	}
}

func TestRecordsScopedToOwner(t *testing.T) {
	repo, session, _ := newTestEnv(t)
	ctx := context.Background()

	if _, err := repo.Insert(ctx, session, TypeStudy, time.Now().UTC()); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	// A second account must not see or mutate the first account's rows.
	other := *session
	other.User = platform.User{ID: "someone-else", Email: "other@b.com"}
	if _, err := repo.Insert(ctx, &other, TypeStudy, time.Now().UTC()); err == nil {
		t.Error("Insert() with mismatched user id succeeded, want ownership failure")
	}
}
