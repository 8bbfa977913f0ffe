package domain

import "time"

// WebSocketMessage is the standard envelope for both directions of the
// socket: {"type": "...", "payload": {...}}.
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Inbound event types (client -> server).
const (
	EventRoomJoin    = "room:join"
	EventRoomLeave   = "room:leave"
	EventChatMessage = "chat:message"
	EventUserTyping  = "user:typing"
)

// Outbound event types (server -> client).
const (
	EventRoomHistory   = "room:history"
	EventSystemMessage = "system:message"
	EventRoomMembers   = "room:members"
	EventUserOnline    = "user:online"
	EventUserOffline   = "user:offline"
	EventError         = "error"
	// chat:message and user:typing are reused outbound.
)

// Error codes carried in ErrorPayload.
const (
	ErrCodeRoomFull      = "ROOM_FULL"
	ErrCodeStorageFailed = "STORAGE_FAILED"
)

// JoinRoomPayload is the payload of a 'room:join' request.
type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// LeaveRoomPayload is the payload of a 'room:leave' request.
type LeaveRoomPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// SendMessagePayload is the payload of an inbound 'chat:message'.
type SendMessagePayload struct {
	RoomID     string `json:"roomId"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Content    string `json:"content"`
}

// TypingPayload is the payload of 'user:typing', both directions.
type TypingPayload struct {
	RoomID   string `json:"roomId,omitempty"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	IsTyping bool   `json:"isTyping"`
}

// SystemPayload is the payload of 'system:message' frames (join/leave
// notices). These are broadcast only, never persisted.
type SystemPayload struct {
	MessageID string    `json:"messageId"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// PresencePayload is the payload of 'user:online' / 'user:offline'.
type PresencePayload struct {
	UserID string `json:"userId"`
}

// ErrorPayload is the payload of 'error' frames.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
