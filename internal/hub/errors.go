package hub

import "errors"

var (
	// ErrRoomFull is returned by Admit when the configured maximum
	// concurrent member count would be exceeded.
	ErrRoomFull = errors.New("room is full")

	// ErrRoomClosed is returned when an operation races with the
	// room's eviction; the registry retries against a fresh instance.
	ErrRoomClosed = errors.New("room is closed")
)
