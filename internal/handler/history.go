package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"study-chat-server/internal/service"

	"github.com/gorilla/mux"
)

// HistoryHandler serves persisted room history over REST, reading the
// same store the rooms write. Used by clients that render history
// outside a live socket (e.g. group previews).
type HistoryHandler struct {
	store        service.MessageStore
	defaultLimit int64
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(store service.MessageStore, defaultLimit int64) *HistoryHandler {
	return &HistoryHandler{store: store, defaultLimit: defaultLimit}
}

// GetMessages handles GET /api/messages/{roomId}?limit=n.
func (h *HistoryHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	if roomID == "" {
		http.Error(w, "roomId is required", http.StatusBadRequest)
		return
	}

	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	messages, err := h.store.ReadHistory(r.Context(), roomID, limit)
	if err != nil {
		log.Printf("handler: history read for room %s failed: %v", roomID, err)
		http.Error(w, "failed to read history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(messages); err != nil {
		log.Printf("handler: encode history for room %s failed: %v", roomID, err)
	}
}

// Health handles GET /healthz.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
