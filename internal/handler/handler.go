package handler

import (
	"log"
	"net/http"
	"study-chat-server/internal/auth"
	"study-chat-server/internal/hub"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// All origins allowed; the platform fronts this with its own CORS policy.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebsocketHandler upgrades connections and hands them to the hub.
type WebsocketHandler struct {
	registry *hub.Registry
	tokens   *auth.TokenResolver
}

// NewWebsocketHandler creates a new WebsocketHandler.
func NewWebsocketHandler(registry *hub.Registry, tokens *auth.TokenResolver) *WebsocketHandler {
	return &WebsocketHandler{
		registry: registry,
		tokens:   tokens,
	}
}

// HandleConnection handles GET /ws?token=<jwt>. The token carries the
// verified user id and display name; the socket itself never
// authenticates beyond this handshake.
func (h *WebsocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	identity, err := h.tokens.Resolve(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("handler: upgrade failed for user %s: %v", identity.UserID, err)
		return
	}

	session := hub.NewSession(h.registry, conn, *identity)
	go session.Run()
}
