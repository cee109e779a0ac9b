package activity

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/mfukui/actlog/internal/metrics"
	"github.com/mfukui/actlog/internal/platform"
)

// ErrInvalidTimestamp is returned before any network call when a mutation is
// attempted with a zero or unparseable timestamp.
var ErrInvalidTimestamp = errors.New("activity: recorded-at timestamp is missing or invalid")

const table = "activities"

// Repository performs the CRUD operations against the activity collection.
// Every operation requires the caller's authenticated session; the user id
// written on inserts is always taken from that session, never from input.
type Repository struct {
	client *platform.Client
}

func NewRepository(client *platform.Client) *Repository {
	return &Repository{client: client}
}

// List returns the user's records of one type, newest first. An empty result
// is a valid outcome, not an error.
func (r *Repository) List(ctx context.Context, session *platform.Session, typeID TypeID) ([]Record, error) {
	defer metrics.ObservePlatformCall("activities.list", time.Now())

	var rows []Record
	err := r.client.From(table).
		Select().
		Eq("user_id", session.User.ID).
		Eq("activity_type_id", strconv.Itoa(int(typeID))).
		OrderDesc("recorded_at").
		Do(ctx, session.Token.AccessToken, &rows)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Record{}
	}
	return rows, nil
}

// Insert records a new activity for the session's user.
func (r *Repository) Insert(ctx context.Context, session *platform.Session, typeID TypeID, recordedAt time.Time) (*Record, error) {
	if recordedAt.IsZero() {
		return nil, ErrInvalidTimestamp
	}
	defer metrics.ObservePlatformCall("activities.insert", time.Now())

	row := map[string]any{
		"user_id":          session.User.ID,
		"activity_type_id": int(typeID),
		"recorded_at":      recordedAt.UTC().Format(time.RFC3339),
	}

	var created []Record
	if err := r.client.From(table).Insert(ctx, session.Token.AccessToken, row, &created); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, errors.New("activity: service returned no created row")
	}
	return &created[0], nil
}

// Update moves an existing record to a new timestamp. Ownership is enforced
// by the service: a foreign or unknown id fails there.
func (r *Repository) Update(ctx context.Context, session *platform.Session, id string, recordedAt time.Time) (*Record, error) {
	if recordedAt.IsZero() {
		return nil, ErrInvalidTimestamp
	}
	defer metrics.ObservePlatformCall("activities.update", time.Now())

	patch := map[string]any{
		"recorded_at": recordedAt.UTC().Format(time.RFC3339),
	}

	var updated []Record
	err := r.client.From(table).
		Eq("id", id).
		Update(ctx, session.Token.AccessToken, patch, &updated)
	if err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, &platform.ServiceError{Status: 404, Message: "record not found"}
	}
	return &updated[0], nil
}

// Delete removes a record permanently. The UI layer is responsible for
// obtaining explicit confirmation before calling this.
func (r *Repository) Delete(ctx context.Context, session *platform.Session, id string) error {
	defer metrics.ObservePlatformCall("activities.delete", time.Now())

	return r.client.From(table).
		Eq("id", id).
		Delete(ctx, session.Token.AccessToken)
}
