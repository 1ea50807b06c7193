package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/npc-dialogue/pkg/dialogue"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// OpenDialogueRequest starts a dialogue with an NPC.
type OpenDialogueRequest struct {
	NPCID int `json:"npc_id"`
}

// ChoiceRequest selects the choice at a zero-based index on the current node.
type ChoiceRequest struct {
	Index int `json:"index"`
}

// ChoiceResponse is returned when a choice terminates the dialogue. The
// action itself travels through the dispatcher and the event stream, not
// the HTTP response.
type ChoiceResponse struct {
	Closed bool `json:"closed"`
}

// DialogueHandler exposes the navigator over HTTP.
// Routes:
// POST /v1/dialogue/open   - Open a dialogue with an NPC
// POST /v1/dialogue/choice - Submit a choice for the current node
// POST /v1/dialogue/close  - Close the current dialogue (idempotent)
// GET  /v1/dialogue        - Current session view
type DialogueHandler struct {
	nav    *dialogue.Navigator
	logger *slog.Logger
}

func NewDialogueHandler(nav *dialogue.Navigator, logger *slog.Logger) *DialogueHandler {
	return &DialogueHandler{
		nav:    nav,
		logger: logger,
	}
}

func (h *DialogueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	action := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/dialogue"), "/")

	switch {
	case r.Method == http.MethodGet && action == "":
		h.handleCurrent(w)
	case r.Method == http.MethodPost && action == "open":
		h.handleOpen(w, r)
	case r.Method == http.MethodPost && action == "choice":
		h.handleChoice(w, r)
	case r.Method == http.MethodPost && action == "close":
		h.handleClose(w, r)
	default:
		h.logger.Warn("Unsupported dialogue route", "method", r.Method, "path", r.URL.Path)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *DialogueHandler) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req OpenDialogueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.nav.Open(r.Context(), req.NPCID)
	if err != nil {
		h.logger.Warn("Failed to open dialogue", "npc_id", req.NPCID, "error", err)
		switch {
		case errors.Is(err, dialogue.ErrNPCNotFound):
			h.writeError(w, http.StatusNotFound, "NPC not found")
		case errors.Is(err, dialogue.ErrMissingStartNode):
			h.writeError(w, http.StatusUnprocessableEntity, "NPC dialogue has no start node")
		default:
			h.writeError(w, http.StatusInternalServerError, "Failed to open dialogue")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, view)
}

func (h *DialogueHandler) handleChoice(w http.ResponseWriter, r *http.Request) {
	var req ChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.nav.Choose(r.Context(), req.Index)
	if err != nil {
		h.logger.Warn("Failed to submit choice", "index", req.Index, "error", err)
		switch {
		case errors.Is(err, dialogue.ErrNoSession):
			h.writeError(w, http.StatusConflict, "No dialogue session is open")
		case errors.Is(err, dialogue.ErrInvalidIndex):
			h.writeError(w, http.StatusBadRequest, "Choice index out of range")
		case errors.Is(err, dialogue.ErrDanglingReference):
			h.writeError(w, http.StatusUnprocessableEntity, "Choice references a missing node")
		case errors.Is(err, dialogue.ErrMalformedAction):
			h.writeError(w, http.StatusUnprocessableEntity, "Choice action is malformed")
		default:
			h.writeError(w, http.StatusInternalServerError, "Failed to submit choice")
		}
		return
	}

	if view == nil {
		// Terminal choice: the session is closed and the action is on its
		// way through the dispatcher.
		h.writeJSON(w, http.StatusOK, ChoiceResponse{Closed: true})
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *DialogueHandler) handleClose(w http.ResponseWriter, r *http.Request) {
	if err := h.nav.Close(r.Context()); err != nil {
		h.logger.Error("Failed to close dialogue", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to close dialogue")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DialogueHandler) handleCurrent(w http.ResponseWriter) {
	view, ok := h.nav.Current()
	if !ok {
		h.writeError(w, http.StatusNotFound, "No dialogue session is open")
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *DialogueHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *DialogueHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}
