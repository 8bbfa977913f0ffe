package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"study-chat-server/internal/domain"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubStore struct {
	history []*domain.ChatMessage
	err     error
	gotRoom string
	gotLim  int64
}

func (s *stubStore) Append(context.Context, string, string, string, string) (*domain.ChatMessage, error) {
	return nil, errors.New("not used")
}

func (s *stubStore) ReadHistory(_ context.Context, roomID string, limit int64) ([]*domain.ChatMessage, error) {
	s.gotRoom = roomID
	s.gotLim = limit
	return s.history, s.err
}

func newHistoryRouter(store *stubStore) *mux.Router {
	h := NewHistoryHandler(store, 200)
	r := mux.NewRouter()
	r.HandleFunc("/api/messages/{roomId}", h.GetMessages).Methods("GET")
	return r
}

func TestGetMessages(t *testing.T) {
	store := &stubStore{history: []*domain.ChatMessage{{
		ID:         primitive.NewObjectID(),
		RoomID:     "r1",
		SenderID:   "u1",
		SenderName: "Alice",
		Content:    "hello",
		Type:       domain.MessageTypeChat,
		CreatedAt:  time.Now().UTC(),
	}}}
	router := newHistoryRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/messages/r1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "r1", store.gotRoom)
	assert.Equal(t, int64(200), store.gotLim)

	var got []*domain.ChatMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Content)
	assert.Equal(t, "Alice", got[0].SenderName)
}

func TestGetMessagesCustomLimit(t *testing.T) {
	store := &stubStore{}
	router := newHistoryRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/messages/r1?limit=25", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(25), store.gotLim)
}

func TestGetMessagesRejectsBadLimit(t *testing.T) {
	router := newHistoryRouter(&stubStore{})

	for _, raw := range []string{"zero", "-5", "0"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/messages/r1?limit="+raw, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", raw)
	}
}

func TestGetMessagesStoreFailure(t *testing.T) {
	router := newHistoryRouter(&stubStore{err: errors.New("mongo down")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/messages/r1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
