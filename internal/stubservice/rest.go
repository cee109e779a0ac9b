package stubservice

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// eqFilter extracts a PostgREST-style eq filter value from the query.
func eqFilter(r *http.Request, column string) (string, bool) {
	raw := r.URL.Query().Get(column)
	if !strings.HasPrefix(raw, "eq.") {
		return "", false
	}
	return strings.TrimPrefix(raw, "eq."), true
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	u, _, ok := s.bearerUser(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "invalid token"})
		return
	}

	// The user_id filter supplied by the client is checked against the
	// token's subject: rows are only ever scoped to the caller.
	if claimed, ok := eqFilter(r, "user_id"); ok && claimed != u.ID {
		writeJSON(w, http.StatusOK, []row{})
		return
	}

	typeID := 0
	if raw, ok := eqFilter(r, "activity_type_id"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid activity_type_id filter"})
			return
		}
		typeID = n
	}

	writeJSON(w, http.StatusOK, s.store.listActivities(u.ID, typeID))
}

type activityPayload struct {
	UserID     string `json:"user_id"`
	TypeID     int    `json:"activity_type_id"`
	RecordedAt string `json:"recorded_at"`
}

func (s *Service) handleInsert(w http.ResponseWriter, r *http.Request) {
	u, _, ok := s.bearerUser(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "invalid token"})
		return
	}

	var payload activityPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed row"})
		return
	}
	if payload.UserID != u.ID {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "row violates ownership policy"})
		return
	}
	recordedAt, err := time.Parse(time.RFC3339, payload.RecordedAt)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid recorded_at"})
		return
	}

	created := s.store.insertActivity(u.ID, payload.TypeID, recordedAt)
	writeJSON(w, http.StatusCreated, []row{*created})
}

func (s *Service) handleUpdate(w http.ResponseWriter, r *http.Request) {
	u, _, ok := s.bearerUser(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "invalid token"})
		return
	}

	id, ok := eqFilter(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "id filter is required"})
		return
	}

	var patch struct {
		RecordedAt string `json:"recorded_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed patch"})
		return
	}
	recordedAt, err := time.Parse(time.RFC3339, patch.RecordedAt)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid recorded_at"})
		return
	}

	updated, ok := s.store.updateActivity(u.ID, id, recordedAt)
	if !ok {
		// Unknown and foreign ids are indistinguishable to the caller.
		writeJSON(w, http.StatusOK, []row{})
		return
	}
	writeJSON(w, http.StatusOK, []row{*updated})
}

func (s *Service) handleDelete(w http.ResponseWriter, r *http.Request) {
	u, _, ok := s.bearerUser(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "invalid token"})
		return
	}

	id, ok := eqFilter(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "id filter is required"})
		return
	}

	s.store.deleteActivity(u.ID, id)
	w.WriteHeader(http.StatusNoContent)
}
