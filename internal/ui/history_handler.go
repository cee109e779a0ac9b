package ui

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mfukui/actlog/internal/action"
	"github.com/mfukui/actlog/internal/activity"
	"github.com/mfukui/actlog/internal/auth"
	weberrors "github.com/mfukui/actlog/internal/http/errors"
)

// datetimeLocalLayout is the wire format of the datetime-local input.
const datetimeLocalLayout = "2006-01-02T15:04"

type historySection struct {
	Type    activity.TypeID
	Records []activity.Record
	Pending bool
	Error   string
}

type editState struct {
	ID    string
	Draft string
}

// History renders the per-type tables. Every GET re-reads all three
// collections; the page is a pure function of that read plus the edit-modal
// query state.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	feedback := h.tracker.Snapshot(session.User.ID)

	sections := make([]historySection, 0, len(activity.Types))
	for _, t := range activity.Types {
		records, err := h.repo.List(r.Context(), session, t)
		if err != nil {
			weberrors.LogError(r, "listing activities failed", err)
			records = []activity.Record{}
		}
		fb := feedback[addControl(t)]
		sections = append(sections, historySection{
			Type:    t,
			Records: records,
			Pending: fb.State == action.StatePending,
			Error:   fb.Message,
		})
	}

	data := h.withFlash(r, map[string]any{
		"Title":    "History",
		"User":     session.User,
		"Sections": sections,
	})

	// The edit modal is transient query-param state: opened by a row's edit
	// affordance seeding the draft, discarded by navigating back to /history.
	if id := r.URL.Query().Get("edit"); id != "" {
		data["Edit"] = editState{ID: id, Draft: r.URL.Query().Get("at")}
	}

	h.render(w, r, "history.html", data)
}

// AddActivity handles the per-type add-entry form.
func (h *Handler) AddActivity(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, "/history", map[string]string{"error": "invalid form"})
		return
	}
	typeID, err := parseTypeID(r.FormValue("type_id"))
	if err != nil {
		h.redirect(w, r, "/history", map[string]string{"error": "Unknown activity type"})
		return
	}

	controlID := addControl(typeID)
	if !h.tracker.Begin(session.User.ID, controlID) {
		h.redirect(w, r, "/history", nil)
		return
	}
	defer h.recoverAction(w, r, session.User.ID, controlID, "/history")

	recordedAt := parseDatetimeLocal(r.FormValue("recorded_at"))
	if _, err := h.repo.Insert(r.Context(), session, typeID, recordedAt); err != nil {
		weberrors.LogError(r, "adding activity failed", err)
		h.tracker.Fail(session.User.ID, controlID, userMessage(err, "Failed to add entry"))
		h.redirect(w, r, "/history", map[string]string{"error": userMessage(err, "Failed to add entry")})
		return
	}

	h.tracker.Commit(session.User.ID, controlID)
	h.redirect(w, r, "/history", map[string]string{"status": "Entry added!"})
}

// UpdateActivity commits the edit modal. Success closes the modal by
// redirecting to the plain listing, which re-reads.
func (h *Handler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, "/history", map[string]string{"error": "invalid form"})
		return
	}

	const controlID = "edit"
	if !h.tracker.Begin(session.User.ID, controlID) {
		h.redirect(w, r, "/history", nil)
		return
	}
	defer h.recoverAction(w, r, session.User.ID, controlID, "/history")

	draft := r.FormValue("recorded_at")
	recordedAt := parseDatetimeLocal(draft)
	if _, err := h.repo.Update(r.Context(), session, id, recordedAt); err != nil {
		weberrors.LogError(r, "updating activity failed", err)
		h.tracker.Fail(session.User.ID, controlID, userMessage(err, "Failed to update"))
		// Keep the modal open with the rejected draft.
		h.redirect(w, r, "/history", map[string]string{
			"edit":  id,
			"at":    draft,
			"error": userMessage(err, "Failed to update"),
		})
		return
	}

	h.tracker.Commit(session.User.ID, controlID)
	h.redirect(w, r, "/history", map[string]string{"status": "Updated!"})
}

// DeleteActivity removes a record. The row's delete affordance asks for
// confirmation before submitting and marks the form as confirmed; a request
// without that mark is refused.
func (h *Handler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, "/history", map[string]string{"error": "invalid form"})
		return
	}
	if r.FormValue("confirmed") != "1" {
		h.redirect(w, r, "/history", nil)
		return
	}

	controlID := "delete:" + id
	if !h.tracker.Begin(session.User.ID, controlID) {
		h.redirect(w, r, "/history", nil)
		return
	}
	defer h.recoverAction(w, r, session.User.ID, controlID, "/history")

	if err := h.repo.Delete(r.Context(), session, id); err != nil {
		weberrors.LogError(r, "deleting activity failed", err)
		h.tracker.Fail(session.User.ID, controlID, userMessage(err, "Failed to delete"))
		h.redirect(w, r, "/history", map[string]string{"error": userMessage(err, "Failed to delete")})
		return
	}

	h.tracker.Commit(session.User.ID, controlID)
	h.redirect(w, r, "/history", map[string]string{"status": "Deleted"})
}

func addControl(t activity.TypeID) string {
	return "add:" + strconv.Itoa(int(t))
}

// parseDatetimeLocal turns the form value into a timestamp. The zero time
// signals a missing or malformed input; the repository rejects it before any
// network call.
func parseDatetimeLocal(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(datetimeLocalLayout, raw, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
