package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"painpal/internal/apperror"
	"painpal/internal/auth"
	"painpal/internal/model"
	"painpal/internal/service"
)

type TrackerHandler struct {
	tracker *service.TrackerService
}

func NewTrackerHandler(tracker *service.TrackerService) *TrackerHandler {
	return &TrackerHandler{tracker: tracker}
}

// currentUser pulls the authenticated user out of the request context. The
// auth middleware guarantees it is there on every protected route; the nil
// check guards against a route being wired without the middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return nil, false
	}
	return user, true
}

// queryLimit parses the optional ?limit= parameter. Zero means "use the
// service default"; the service also enforces the ceiling.
func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

type createPainLogRequest struct {
	PainLevel int      `json:"painLevel"`
	Notes     string   `json:"notes"`
	Tags      []string `json:"tags"`
}

// CreatePainLog handles POST /api/pain-logs.
func (h *TrackerHandler) CreatePainLog(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createPainLogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	log, err := h.tracker.LogPain(r.Context(), user.ID, req.PainLevel, req.Notes, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, log)
}

// ListPainLogs handles GET /api/pain-logs.
func (h *TrackerHandler) ListPainLogs(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	logs, err := h.tracker.PainLogs(r.Context(), user.ID, queryLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// Streak handles GET /api/pain-logs/streak.
func (h *TrackerHandler) Streak(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	days, err := h.tracker.DayStreak(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"streak": days})
}

type createMoodLogRequest struct {
	Mood         int      `json:"mood"`
	AnxietyLevel int      `json:"anxietyLevel"`
	Triggers     []string `json:"triggers"`
	Helpers      []string `json:"helpers"`
	Notes        string   `json:"notes"`
}

// CreateMoodLog handles POST /api/mood-logs.
func (h *TrackerHandler) CreateMoodLog(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createMoodLogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	log, err := h.tracker.LogMood(r.Context(), user.ID, req.Mood, req.AnxietyLevel, req.Triggers, req.Helpers, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, log)
}

// ListMoodLogs handles GET /api/mood-logs.
func (h *TrackerHandler) ListMoodLogs(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	logs, err := h.tracker.MoodLogs(r.Context(), user.ID, queryLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

type createInterventionRequest struct {
	Name      string `json:"name"`
	Frequency string `json:"frequency"`
}

// CreateIntervention handles POST /api/interventions.
func (h *TrackerHandler) CreateIntervention(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createInterventionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	iv, err := h.tracker.CreateIntervention(r.Context(), user.ID, req.Name, req.Frequency)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, iv)
}

// ListInterventions handles GET /api/interventions.
func (h *TrackerHandler) ListInterventions(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	ivs, err := h.tracker.Interventions(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ivs)
}

// interventionID parses the {id} path parameter.
func interventionID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed("id", "intervention id must be a positive integer")
	}
	return id, nil
}

type createInterventionLogRequest struct {
	PainLevel int    `json:"painLevel"`
	Notes     string `json:"notes"`
}

// CreateInterventionLog handles POST /api/interventions/{id}/logs.
func (h *TrackerHandler) CreateInterventionLog(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, err := interventionID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req createInterventionLogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	log, err := h.tracker.LogIntervention(r.Context(), user.ID, id, req.PainLevel, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, log)
}

// ListInterventionLogs handles GET /api/interventions/{id}/logs.
func (h *TrackerHandler) ListInterventionLogs(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, err := interventionID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	logs, err := h.tracker.InterventionLogs(r.Context(), user.ID, id, queryLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}
