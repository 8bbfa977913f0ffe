package hub

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"study-chat-server/internal/auth"
	"study-chat-server/internal/domain"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/gorilla/websocket"
)

const sendBufferSize = 256

// Session binds one WebSocket connection to one verified identity and
// at most one room. It only routes: inbound frames become room calls,
// room events become outbound frames. On transport close the session
// dismisses itself from its room exactly once.
type Session struct {
	id       string
	identity auth.Identity
	registry *Registry
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}

	room      *Room // owned by the readPump goroutine
	closeOnce sync.Once
}

// NewSession creates a session for an upgraded connection.
func NewSession(registry *Registry, conn *websocket.Conn, identity auth.Identity) *Session {
	id, err := gonanoid.New(12)
	if err != nil {
		// gonanoid only fails when the OS entropy source does.
		panic(err)
	}
	return &Session{
		id:       id,
		identity: identity,
		registry: registry,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}
}

// Run starts the write pump and blocks reading inbound frames until
// the connection drops.
func (s *Session) Run() {
	go s.writePump()
	s.readPump()
}

func (s *Session) readPump() {
	defer s.close()

	for {
		var frame domain.WebSocketMessage
		if err := s.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("session %s (%s): read error: %v", s.id, s.identity.UserID, err)
			}
			return
		}
		s.handleEvent(frame)
	}
}

func (s *Session) writePump() {
	defer s.conn.Close()

	for {
		select {
		case frame := <-s.send:
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Printf("session %s (%s): write error: %v", s.id, s.identity.UserID, err)
				return
			}
		case <-s.done:
			return
		}
	}
}

// close runs the disconnect lifecycle once: implicit dismiss from the
// current room, then transport teardown.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		if s.room != nil {
			s.room.Dismiss(s)
			s.room = nil
		}
		close(s.done)
		s.conn.Close()
	})
}

// handleEvent dispatches one inbound frame. Malformed frames are
// dropped with a log line and no state change.
func (s *Session) handleEvent(frame domain.WebSocketMessage) {
	switch frame.Type {
	case domain.EventRoomJoin:
		var payload domain.JoinRoomPayload
		if err := parsePayload(frame.Payload, &payload); err != nil || payload.RoomID == "" {
			s.logInvalid(frame.Type, err)
			return
		}
		s.joinRoom(payload.RoomID)

	case domain.EventRoomLeave:
		var payload domain.LeaveRoomPayload
		if err := parsePayload(frame.Payload, &payload); err != nil || payload.RoomID == "" {
			s.logInvalid(frame.Type, err)
			return
		}
		if s.room != nil && s.room.ID() == payload.RoomID {
			s.room.Dismiss(s)
			s.room = nil
		}

	case domain.EventChatMessage:
		var payload domain.SendMessagePayload
		if err := parsePayload(frame.Payload, &payload); err != nil || payload.RoomID == "" {
			s.logInvalid(frame.Type, err)
			return
		}
		if s.room == nil || s.room.ID() != payload.RoomID {
			s.logInvalid(frame.Type, errors.New("not joined to room"))
			return
		}
		if err := s.room.Post(context.Background(), s, payload.Content); err != nil {
			log.Printf("session %s (%s): post to room %s failed: %v", s.id, s.identity.UserID, payload.RoomID, err)
			s.deliver(domain.EventError, domain.ErrorPayload{
				Code:    domain.ErrCodeStorageFailed,
				Message: "message could not be saved, please retry",
			})
		}

	case domain.EventUserTyping:
		var payload domain.TypingPayload
		if err := parsePayload(frame.Payload, &payload); err != nil || payload.RoomID == "" {
			s.logInvalid(frame.Type, err)
			return
		}
		if s.room != nil && s.room.ID() == payload.RoomID {
			s.room.SetTyping(s, payload.IsTyping)
		}

	default:
		s.logInvalid(frame.Type, errors.New("unknown event type"))
	}
}

// joinRoom binds the session to a room, leaving its current room first
// if it is bound elsewhere. Joining the current room again is a no-op.
func (s *Session) joinRoom(roomID string) {
	if s.room != nil {
		if s.room.ID() == roomID {
			return
		}
		s.room.Dismiss(s)
		s.room = nil
	}

	room, err := s.registry.Join(context.Background(), s, roomID)
	if err != nil {
		code := domain.ErrCodeStorageFailed
		message := "could not join room, please retry"
		if errors.Is(err, ErrRoomFull) {
			code = domain.ErrCodeRoomFull
			message = "room is full"
		}
		log.Printf("session %s (%s): join room %s refused: %v", s.id, s.identity.UserID, roomID, err)
		s.deliver(domain.EventError, domain.ErrorPayload{Code: code, Message: message})
		return
	}
	s.room = room
}

// deliver marshals and enqueues one frame for this session only.
func (s *Session) deliver(eventType string, payload interface{}) {
	frame, err := marshalFrame(eventType, payload)
	if err != nil {
		log.Printf("session %s: marshal %s frame: %v", s.id, eventType, err)
		return
	}
	s.enqueue(frame)
}

// enqueue never blocks the room loop: a session whose buffer is full
// loses the frame rather than stalling the whole room.
func (s *Session) enqueue(frame []byte) {
	select {
	case s.send <- frame:
	default:
		log.Printf("session %s (%s): send buffer full, dropping frame", s.id, s.identity.UserID)
	}
}

func (s *Session) logInvalid(eventType string, err error) {
	log.Printf("session %s (%s): dropping invalid %q event: %v", s.id, s.identity.UserID, eventType, err)
}

// --- Helper Functions ---

func marshalFrame(eventType string, payload interface{}) ([]byte, error) {
	return json.Marshal(domain.WebSocketMessage{Type: eventType, Payload: payload})
}

func parsePayload(payload interface{}, result interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return errors.New("failed to marshal payload")
	}
	return json.Unmarshal(payloadBytes, result)
}
