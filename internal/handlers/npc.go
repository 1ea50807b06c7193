package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/jwebster45206/npc-dialogue/pkg/npc"
)

// NPCSummary is the list representation of a catalog entry.
type NPCSummary struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Model string `json:"model"`
}

// CreateNPCResponse is returned after dynamic creation.
type CreateNPCResponse struct {
	ID int `json:"id"`
}

// NPCHandler exposes the catalog over HTTP.
// Routes:
// GET  /v1/npcs      - List all NPCs
// GET  /v1/npcs/{id} - Read one NPC definition
// POST /v1/npcs      - Create a dynamic NPC
type NPCHandler struct {
	catalog *npc.Catalog
	logger  *slog.Logger
}

func NewNPCHandler(catalog *npc.Catalog, logger *slog.Logger) *NPCHandler {
	return &NPCHandler{
		catalog: catalog,
		logger:  logger,
	}
}

func (h *NPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	idPart := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/npcs"), "/")

	switch r.Method {
	case http.MethodGet:
		if idPart == "" {
			h.handleList(w)
			return
		}
		id, err := strconv.Atoi(idPart)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid NPC ID format")
			return
		}
		h.handleGet(w, id)

	case http.MethodPost:
		if idPart != "" {
			h.writeError(w, http.StatusBadRequest, "POST is not supported on a specific NPC")
			return
		}
		h.handleCreate(w, r)

	default:
		h.logger.Warn("Method not allowed for npcs endpoint", "method", r.Method)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, POST")
	}
}

func (h *NPCHandler) handleList(w http.ResponseWriter) {
	defs := h.catalog.List()
	summaries := make([]NPCSummary, 0, len(defs))
	for _, def := range defs {
		summaries = append(summaries, NPCSummary{
			ID:    def.ID,
			Name:  def.Name,
			Model: def.Model,
		})
	}
	h.writeJSON(w, http.StatusOK, summaries)
}

func (h *NPCHandler) handleGet(w http.ResponseWriter, id int) {
	def, ok := h.catalog.Get(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "NPC not found")
		return
	}
	h.writeJSON(w, http.StatusOK, def)
}

func (h *NPCHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var def npc.Definition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.catalog.CreateDynamic(&def)
	if err != nil {
		h.logger.Warn("Failed to create dynamic NPC", "error", err)
		if errors.Is(err, npc.ErrInvalidConfig) || errors.Is(err, npc.ErrDuplicateID) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to create NPC")
		return
	}

	h.writeJSON(w, http.StatusCreated, CreateNPCResponse{ID: id})
}

func (h *NPCHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *NPCHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}
