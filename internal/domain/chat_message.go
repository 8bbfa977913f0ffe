package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message type values carried in ChatMessage.Type.
const (
	MessageTypeChat   = "chat"
	MessageTypeSystem = "system"
)

// ChatMessage represents a single message in a room, stored in MongoDB.
// The JSON shape is the wire shape: it is sent verbatim in room:history
// and chat:message frames and returned by the history REST endpoint.
type ChatMessage struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"messageId"`
	RoomID     string             `bson:"room_id" json:"roomId"`
	SenderID   string             `bson:"sender_id" json:"senderId"`
	SenderName string             `bson:"sender_name" json:"senderName"`
	Content    string             `bson:"content" json:"content"`
	Type       string             `bson:"type" json:"type"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}
