package domain

// Member is one entry of a room's roster as shown in room:members
// frames. The roster itself (user ids, names, roles) comes from the
// external group service; IsOnline is derived from live sessions.
type Member struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Role     string `json:"role,omitempty"`
	IsOnline bool   `json:"isOnline"`
}
