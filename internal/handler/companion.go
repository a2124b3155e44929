package handler

import (
	"net/http"

	"painpal/internal/service"
)

type CompanionHandler struct {
	companion *service.CompanionService
}

func NewCompanionHandler(companion *service.CompanionService) *CompanionHandler {
	return &CompanionHandler{companion: companion}
}

type chatRequest struct {
	Content string `json:"content"`
}

// Chat handles POST /api/chat: stores the user's message, returns the
// companion's reply.
func (h *CompanionHandler) Chat(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.companion.Chat(r.Context(), user, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// History handles GET /api/chat/messages. Messages come back in
// chronological order, windowed to the most recent ?limit=.
func (h *CompanionHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	msgs, err := h.companion.History(r.Context(), user.ID, queryLimit(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type patternsResponse struct {
	Insights string `json:"insights"`
}

// DailySummary handles GET /api/summary/daily.
func (h *CompanionHandler) DailySummary(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	summary, err := h.companion.DailySummary(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: summary})
}

// Patterns handles GET /api/summary/patterns.
func (h *CompanionHandler) Patterns(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	insights, err := h.companion.Patterns(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, patternsResponse{Insights: insights})
}
