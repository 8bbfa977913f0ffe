package mongo

import (
	"context"
	"fmt"
	"study-chat-server/internal/domain"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messageCollection = "messages"

// MessageStore persists chat messages, one document per message,
// keyed by room. Implements service.MessageStore.
type MessageStore struct {
	DB *mongo.Database
}

// NewMessageStore creates a new MessageStore.
func NewMessageStore(db *mongo.Database) *MessageStore {
	return &MessageStore{DB: db}
}

// Append assigns an id and timestamp to the message and inserts it.
// The returned message is the authoritative copy the hub fans out.
func (s *MessageStore) Append(ctx context.Context, roomID, senderID, senderName, content string) (*domain.ChatMessage, error) {
	msg := &domain.ChatMessage{
		ID:         primitive.NewObjectID(),
		RoomID:     roomID,
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
		Type:       domain.MessageTypeChat,
		CreatedAt:  time.Now().UTC(),
	}

	collection := s.DB.Collection(messageCollection)
	if _, err := collection.InsertOne(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to append message for room %s: %w", roomID, err)
	}
	return msg, nil
}

// ReadHistory retrieves up to limit messages for a room, oldest first.
// A limit <= 0 reads the full history.
func (s *MessageStore) ReadHistory(ctx context.Context, roomID string, limit int64) ([]*domain.ChatMessage, error) {
	collection := s.DB.Collection(messageCollection)

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := collection.Find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read history for room %s: %w", roomID, err)
	}
	defer cursor.Close(ctx)

	messages := make([]*domain.ChatMessage, 0)
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode history for room %s: %w", roomID, err)
	}
	return messages, nil
}
