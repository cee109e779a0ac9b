package ui

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mfukui/actlog/internal/action"
	"github.com/mfukui/actlog/internal/activity"
	"github.com/mfukui/actlog/internal/auth"
	weberrors "github.com/mfukui/actlog/internal/http/errors"
)

type quickButton struct {
	Type    activity.TypeID
	Pending bool
	Success bool
	Error   string
}

// Dashboard renders the quick-record view. Button states come from the
// mutation tracker, so a pending or freshly-committed control renders
// disabled or with its success mark until the feedback expires.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	feedback := h.tracker.Snapshot(session.User.ID)

	buttons := make([]quickButton, 0, len(activity.Types))
	for _, t := range activity.Types {
		fb := feedback[quickControl(t)]
		buttons = append(buttons, quickButton{
			Type:    t,
			Pending: fb.State == action.StatePending,
			Success: fb.State == action.StateCommitted,
			Error:   fb.Message,
		})
	}

	data := h.withFlash(r, map[string]any{
		"Title":   "Record",
		"User":    session.User,
		"Buttons": buttons,
	})
	h.render(w, r, "main.html", data)
}

// QuickRecord logs an activity of the submitted type at the current time.
func (h *Handler) QuickRecord(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, "/", map[string]string{"error": "invalid form"})
		return
	}
	typeID, err := parseTypeID(r.FormValue("type_id"))
	if err != nil {
		h.redirect(w, r, "/", map[string]string{"error": "Unknown activity type"})
		return
	}

	controlID := quickControl(typeID)
	if !h.tracker.Begin(session.User.ID, controlID) {
		// Double-submission guard: the prior submission is still pending.
		h.redirect(w, r, "/", nil)
		return
	}
	defer h.recoverAction(w, r, session.User.ID, controlID, "/")

	if _, err := h.repo.Insert(r.Context(), session, typeID, time.Now()); err != nil {
		weberrors.LogError(r, "quick record failed", err)
		h.tracker.Fail(session.User.ID, controlID, userMessage(err, "Failed to record"))
		h.redirect(w, r, "/", map[string]string{"error": userMessage(err, "Failed to record")})
		return
	}

	h.tracker.Commit(session.User.ID, controlID)
	h.redirect(w, r, "/", map[string]string{"status": "Recorded!"})
}

// recoverAction is the boundary for unexpected failures inside a mutation:
// the control is always re-enabled and the user sees a generic message.
func (h *Handler) recoverAction(w http.ResponseWriter, r *http.Request, userID, controlID, back string) {
	if v := recover(); v != nil {
		h.tracker.Fail(userID, controlID, "")
		weberrors.LogError(r, "unexpected failure in mutation", fmt.Errorf("panic: %v", v))
		h.redirect(w, r, back, map[string]string{"error": "Something went wrong"})
	}
}

func quickControl(t activity.TypeID) string {
	return "quick:" + strconv.Itoa(int(t))
}

func parseTypeID(raw string) (activity.TypeID, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	t := activity.TypeID(n)
	if !t.Valid() {
		return 0, fmt.Errorf("unknown activity type %d", n)
	}
	return t, nil
}
