package hub

import (
	"context"
	"errors"
	"log"
	"study-chat-server/internal/domain"
	"study-chat-server/internal/service"
	"sync"
)

// Registry owns the roomID -> live Room map, the only state shared
// across rooms. Rooms are created lazily on first join and evict
// themselves once their last session leaves.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	store  service.MessageStore
	groups service.GroupDirectory
	cfg    RoomConfig
}

// NewRegistry creates an empty registry. groups may be nil, in which
// case room:members carries live sessions only.
func NewRegistry(store service.MessageStore, groups service.GroupDirectory, cfg RoomConfig) *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		store:  store,
		groups: groups,
		cfg:    cfg,
	}
}

// Join resolves the room for roomID (creating it if needed), refreshes
// its roster from the group directory and admits the session. A join
// racing with the room's eviction retries against a fresh instance.
func (reg *Registry) Join(ctx context.Context, sess *Session, roomID string) (*Room, error) {
	var roster []domain.Member
	if reg.groups != nil {
		members, err := reg.groups.GroupMembers(ctx, roomID)
		if err != nil {
			log.Printf("registry: roster lookup for room %s failed: %v", roomID, err)
		} else {
			roster = members
		}
	}

	for {
		room := reg.getOrCreate(roomID)
		err := room.Admit(ctx, sess, roster)
		if errors.Is(err, ErrRoomClosed) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return room, nil
	}
}

// getOrCreate returns the live room for roomID, starting a new one if
// absent. At most one Room instance exists per id at any time.
func (reg *Registry) getOrCreate(roomID string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if room, ok := reg.rooms[roomID]; ok {
		return room
	}
	room := newRoom(roomID, reg, reg.store, reg.cfg)
	reg.rooms[roomID] = room
	go room.run()
	return room
}

// release drops the mapping for an emptied room. The pointer check
// keeps a racing recreate from being evicted by its predecessor.
func (reg *Registry) release(roomID string, room *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.rooms[roomID] == room {
		delete(reg.rooms, roomID)
	}
}

// Len reports the number of live rooms.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

// Shutdown force-closes every live room. Sessions still connected see
// their rooms as closed; further operations on them are no-ops.
func (reg *Registry) Shutdown(ctx context.Context) error {
	reg.mu.Lock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.mu.Unlock()

	for _, room := range rooms {
		room.stop()
	}
	return ctx.Err()
}
