package hub

import (
	"context"
	"encoding/json"
	"errors"
	"study-chat-server/internal/auth"
	"study-chat-server/internal/domain"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore is an in-memory MessageStore. It survives room eviction,
// like the real store.
type fakeStore struct {
	mu         sync.Mutex
	messages   map[string][]*domain.ChatMessage
	failAppend bool
	failRead   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{messages: make(map[string][]*domain.ChatMessage)}
}

func (f *fakeStore) Append(_ context.Context, roomID, senderID, senderName, content string) (*domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAppend {
		return nil, errors.New("append failed")
	}
	msg := &domain.ChatMessage{
		ID:         primitive.NewObjectID(),
		RoomID:     roomID,
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
		Type:       domain.MessageTypeChat,
		CreatedAt:  time.Now().UTC(),
	}
	f.messages[roomID] = append(f.messages[roomID], msg)
	return msg, nil
}

func (f *fakeStore) ReadHistory(_ context.Context, roomID string, limit int64) ([]*domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRead {
		return nil, errors.New("read failed")
	}
	stored := f.messages[roomID]
	if limit > 0 && int64(len(stored)) > limit {
		stored = stored[:limit]
	}
	out := make([]*domain.ChatMessage, len(stored))
	copy(out, stored)
	return out, nil
}

func (f *fakeStore) count(roomID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages[roomID])
}

// fakeDirectory serves a fixed roster per room.
type fakeDirectory struct {
	rosters map[string][]domain.Member
	err     error
}

func (f *fakeDirectory) GroupMembers(_ context.Context, roomID string) ([]domain.Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rosters[roomID], nil
}

func newTestRegistry(store *fakeStore, cfg RoomConfig) *Registry {
	return NewRegistry(store, nil, cfg)
}

func newTestSession(reg *Registry, userID, userName string) *Session {
	return NewSession(reg, nil, auth.Identity{UserID: userID, UserName: userName})
}

// frame mirrors domain.WebSocketMessage with a raw payload for typed
// decoding in assertions.
type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// nextFrame drains the session's send queue until a frame of the given
// type arrives, skipping interleaved events.
func nextFrame(t *testing.T, s *Session, eventType string) frame {
	t.Helper()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case raw := <-s.send:
			var f frame
			require.NoError(t, json.Unmarshal(raw, &f))
			if f.Type == eventType {
				return f
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q frame", eventType)
		}
	}
}

// expectNoFrame asserts that no frame of the given type arrives within
// the window.
func expectNoFrame(t *testing.T, s *Session, eventType string, window time.Duration) {
	t.Helper()

	deadline := time.After(window)
	for {
		select {
		case raw := <-s.send:
			var f frame
			require.NoError(t, json.Unmarshal(raw, &f))
			if f.Type == eventType {
				t.Fatalf("unexpected %q frame: %s", eventType, f.Payload)
			}
		case <-deadline:
			return
		}
	}
}

func decodePayload(t *testing.T, f frame, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(f.Payload, out))
}

func mustJoin(t *testing.T, reg *Registry, s *Session, roomID string) *Room {
	t.Helper()
	room, err := reg.Join(context.Background(), s, roomID)
	require.NoError(t, err)
	s.room = room
	return room
}
