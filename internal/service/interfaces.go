package service

import (
	"context"
	"study-chat-server/internal/domain"
)

// --- Collaborator Interfaces ---

// MessageStore is the append-only message log consumed by the hub.
// Append assigns the message id and timestamp; ReadHistory returns
// messages oldest first. A write must be visible to a subsequent read
// of the same room (the hub fans out only after Append returns).
type MessageStore interface {
	Append(ctx context.Context, roomID, senderID, senderName, content string) (*domain.ChatMessage, error)
	ReadHistory(ctx context.Context, roomID string, limit int64) ([]*domain.ChatMessage, error)
}

// GroupDirectory exposes the external group service's membership data.
// The hub uses it to enrich room:members with the full roster and
// member roles; lookups are best effort and must not gate chat.
type GroupDirectory interface {
	GroupMembers(ctx context.Context, roomID string) ([]domain.Member, error)
}
